package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meridianlabs/brandgraph/internal/storage"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/leaselock"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessDeleteMessage purges a project: its uploaded mention files in S3
// and then the project row, which cascades to sources, records, runs and
// reports. The lease serializes the purge against a concurrent insight run.
func ProcessDeleteMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(DeleteMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	q := store.New(conn)

	project, err := q.GetProject(ctx, data.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info("[Queue] Skipping delete: project is already gone", "project_id", data.ProjectID)
			return nil
		}
		return fmt.Errorf("failed to load project %d: %w", data.ProjectID, err)
	}

	start := time.Now()
	locker := leaselock.New(conn)
	err = locker.WithLease(ctx, project.ID, leaselock.Options{
		Wait:         true,
		HolderPrefix: fmt.Sprintf("delete/%d/", project.ID),
	}, func(ctx context.Context) error {
		prefix := fmt.Sprintf("projects/%d/mentions", project.ID)
		if err := storage.DeleteFolder(ctx, s3Client, prefix); err != nil {
			return err
		}
		return q.DeleteProject(ctx, project.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", project.ID, err)
	}

	logger.Info("[Queue] Project deleted",
		"project_id", project.ID,
		"duration_sec", time.Since(start).Seconds(),
	)

	return nil
}
