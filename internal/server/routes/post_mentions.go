package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/meridianlabs/brandgraph/internal/queue"
	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/storage"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateMentionsHandler accepts mention sources for analysis as
// multipart/form-data: uploaded files under "files" and web page URLs as
// repeated "urls" values. CSV files are split row-wise, everything else is
// treated as a document. The whole batch is queued as one ingest message.
func CreateMentionsHandler(c echo.Context) error {
	type createMentionsBody struct {
		ProjectID int64 `param:"id" validate:"required,numeric"`
	}

	type createMentionsResponse struct {
		Message string                `json:"message"`
		BatchID string                `json:"batch_id,omitempty"`
		Sources []store.MentionSource `json:"sources,omitempty"`
	}

	data := new(createMentionsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createMentionsResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createMentionsResponse{
			Message: "Invalid request body",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, createMentionsResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["files"]
	urls := form.Value["urls"]
	if len(uploads) == 0 && len(urls) == 0 {
		return c.JSON(http.StatusBadRequest, createMentionsResponse{
			Message: "No files or URLs provided",
		})
	}

	for _, rawURL := range urls {
		parsed, err := url.Parse(rawURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return c.JSON(http.StatusBadRequest, createMentionsResponse{
				Message: fmt.Sprintf("Invalid URL: %s", rawURL),
			})
		}
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	project, err := q.GetProject(ctx, data.ProjectID)
	if err != nil {
		return c.JSON(http.StatusNotFound, createMentionsResponse{
			Message: "Project not found",
		})
	}
	if project.Status == store.ProjectStatusDeleting {
		return c.JSON(http.StatusConflict, createMentionsResponse{
			Message: "Project is being deleted",
		})
	}

	batchID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createMentionsResponse{
			Message: "Internal server error",
		})
	}

	s3Client := c.(*middleware.AppContext).App.S3

	type stagedSource struct {
		kind        string
		location    string
		displayName string
	}
	staged := make([]stagedSource, 0, len(uploads)+len(urls))

	for _, file := range uploads {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, createMentionsResponse{
				Message: "Could not open file",
			})
		}
		defer src.Close()

		fileID, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, createMentionsResponse{
				Message: "Internal server error",
			})
		}
		key, err := storage.PutFile(
			ctx,
			s3Client,
			fmt.Sprintf("projects/%d/mentions", project.ID),
			file.Filename,
			fileID,
			src,
		)
		if err != nil {
			logger.Error("Failed to upload mention file", "err", err)
			return c.JSON(http.StatusInternalServerError, createMentionsResponse{
				Message: "Internal server error",
			})
		}

		kind := store.SourceKindDocument
		if strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
			kind = store.SourceKindCSV
		}
		staged = append(staged, stagedSource{
			kind:        kind,
			location:    key,
			displayName: file.Filename,
		})
	}

	for _, rawURL := range urls {
		staged = append(staged, stagedSource{
			kind:        store.SourceKindWeb,
			location:    rawURL,
			displayName: rawURL,
		})
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "err", err)
		return c.JSON(http.StatusInternalServerError, createMentionsResponse{
			Message: "Internal server error",
		})
	}
	defer tx.Rollback(ctx)
	qtx := q.WithTx(tx)

	sources := make([]store.MentionSource, 0, len(staged))
	sourceIDs := make([]int64, 0, len(staged))
	for _, s := range staged {
		source, err := qtx.CreateMentionSource(ctx, store.CreateMentionSourceParams{
			ProjectID:   project.ID,
			BatchID:     batchID,
			Kind:        s.kind,
			Location:    s.location,
			DisplayName: s.displayName,
		})
		if err != nil {
			logger.Error("Failed to create mention source", "err", err)
			return c.JSON(http.StatusInternalServerError, createMentionsResponse{
				Message: "Internal server error",
			})
		}
		sources = append(sources, source)
		sourceIDs = append(sourceIDs, source.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit transaction", "err", err)
		return c.JSON(http.StatusInternalServerError, createMentionsResponse{
			Message: "Internal server error",
		})
	}

	msgBytes, err := json.Marshal(queue.IngestMsg{
		Message:   "Mention batch created",
		ProjectID: project.ID,
		BatchID:   batchID,
		SourceIDs: sourceIDs,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createMentionsResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.IngestQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to ingest_queue", "batch_id", batchID, "err", err)
	}

	return c.JSON(http.StatusOK, createMentionsResponse{
		Message: "Mention batch queued for analysis",
		BatchID: batchID,
		Sources: sources,
	})
}
