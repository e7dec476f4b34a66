package routes

import (
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/storage"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

func ListMentionsHandler(c echo.Context) error {
	type mentionEntry struct {
		store.MentionSource
		DownloadLink string `json:"download_link,omitempty"`
	}

	type listMentionsResponse struct {
		Sources []mentionEntry                  `json:"sources"`
		Counts  store.MentionSourceStatusCounts `json:"counts"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	s3Client := c.(*middleware.AppContext).App.S3
	q := store.New(conn)

	sources, err := q.ListMentionSources(ctx, projectID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	counts, err := q.CountMentionSourceStatus(ctx, projectID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	entries := make([]mentionEntry, 0, len(sources))
	for _, source := range sources {
		entry := mentionEntry{MentionSource: source}
		if source.Kind != store.SourceKindWeb {
			link, err := storage.GenerateDownloadLink(ctx, s3Client, source.Location)
			if err != nil {
				logger.Warn("Failed to generate download link", "source_id", source.ID, "err", err)
			} else {
				entry.DownloadLink = link
			}
		}
		entries = append(entries, entry)
	}

	return c.JSON(http.StatusOK, listMentionsResponse{
		Sources: entries,
		Counts:  counts,
	})
}
