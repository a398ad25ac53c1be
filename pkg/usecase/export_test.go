package usecase

// Export unexported functions for testing
var (
	ParseVerdictForTest        = parseVerdict
	BuildPromptForTest         = buildPrompt
	EvalStructuralForTest      = evalStructural
	DownloadZipFileForTest     = downloadZipFile
	ExtractZipFileForTest      = extractZipFile
	StepDownDirectoryForTest   = stepDownDirectory
	CreateOrUpdateTableForTest = createOrUpdateTable
)
