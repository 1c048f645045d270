package drive

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/importer"
)

// FileStore is the part of Service the ingester needs.
type FileStore interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	GetFile(ctx context.Context, fileID string) (*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// IngestService reads order exports stored on Drive.
type IngestService struct {
	files FileStore
}

func NewIngestService(files FileStore) *IngestService {
	return &IngestService{files: files}
}

// FolderImport is the merged content of every export in a folder.
type FolderImport struct {
	Records []domain.OrderRecord
	Files   []string
}

// IngestFile downloads one export and parses it.
func (s *IngestService) IngestFile(ctx context.Context, fileID string) ([]domain.OrderRecord, error) {
	f, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	format, err := importer.DetectFormat(f.Name)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, f, format)
}

// IngestFolder parses every csv/xlsx export in a folder. Other files are
// skipped.
func (s *IngestService) IngestFolder(ctx context.Context, folderID string) (*FolderImport, error) {
	files, err := s.files.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	out := &FolderImport{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		format, err := importer.DetectFormat(f.Name)
		if err != nil {
			log.Debug().Str("file", f.Name).Msg("skipping non-export drive file")
			continue
		}

		records, err := s.ingest(ctx, f, format)
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, records...)
		out.Files = append(out.Files, f.Name)
	}
	return out, nil
}

func (s *IngestService) ingest(ctx context.Context, f *File, format importer.Format) ([]domain.OrderRecord, error) {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(s.files.DownloadFile(ctx, f.ID, pw))
	}()
	defer pr.Close()

	records, err := importer.Read(pr, format)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", f.Name, err)
	}

	log.Info().Str("file", f.Name).Int("records", len(records)).Msg("imported drive export")
	return records, nil
}
