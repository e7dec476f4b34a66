package loader

import (
	"context"
)

type SourceType string

const (
	SourceTypeDocument SourceType = "document"
	SourceTypeCSV      SourceType = "csv"
	SourceTypeWeb      SourceType = "web"
)

// SourceFile represents one mention source that can be loaded into text for
// analysis. It carries metadata such as the source path, the maximum token
// count per analysis chunk, and the loader that retrieves the content.
//
// The actual content is retrieved via the associated FileLoader.
type SourceFile struct {
	ID         string
	Path       string
	SourceType SourceType
	MaxTokens  int
	Loader     FileLoader
}

// NewSourceFileParams defines the input parameters for creating a new
// SourceFile instance. It is used by the constructor functions to initialize
// SourceFile values with consistent metadata and loader configuration.
type NewSourceFileParams struct {
	ID        string
	Path      string
	MaxTokens int
	Loader    FileLoader
}

// NewDocumentSourceFile creates a new SourceFile of type SourceTypeDocument
// using the provided parameters. This is used for plain-text mention
// exports such as articles, transcripts or AI answers.
func NewDocumentSourceFile(
	params NewSourceFileParams,
) SourceFile {
	return SourceFile{
		ID:         params.ID,
		Path:       params.Path,
		SourceType: SourceTypeDocument,
		MaxTokens:  params.MaxTokens,
		Loader:     params.Loader,
	}
}

// NewCSVSourceFile creates a new SourceFile of type SourceTypeCSV. This is
// used for tabular mention exports, e.g. from social listening tools.
func NewCSVSourceFile(
	params NewSourceFileParams,
) SourceFile {
	return SourceFile{
		ID:         params.ID,
		Path:       params.Path,
		SourceType: SourceTypeCSV,
		MaxTokens:  params.MaxTokens,
		Loader:     params.Loader,
	}
}

// NewWebSourceFile creates a new SourceFile of type SourceTypeWeb. The path
// is a URL; the content is fetched and reduced to readable text.
func NewWebSourceFile(
	params NewSourceFileParams,
) SourceFile {
	return SourceFile{
		ID:         params.ID,
		Path:       params.Path,
		SourceType: SourceTypeWeb,
		MaxTokens:  params.MaxTokens,
		Loader:     params.Loader,
	}
}

// GetText retrieves the raw text content of the source using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(text))
func (f *SourceFile) GetText(ctx context.Context) ([]byte, error) {
	return f.Loader.GetFileText(ctx, *f)
}

// FileLoader defines the interface for loading the contents of a SourceFile.
// Implementations may load content from disk, object storage, or the web.
type FileLoader interface {
	GetFileText(ctx context.Context, file SourceFile) ([]byte, error)
}
