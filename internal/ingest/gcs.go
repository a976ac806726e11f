package ingest

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSSource reads a CSV export stored as a Cloud Storage object.
type GCSSource struct {
	Bucket          string
	Object          string
	CredentialsFile string
}

func (s *GCSSource) Fetch(ctx context.Context) (*Table, error) {
	var opts []option.ClientOption
	if s.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(s.Bucket).Object(s.Object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s, err)
	}
	defer r.Close()

	return ReadTable(r)
}

func (s *GCSSource) String() string {
	return fmt.Sprintf("gs://%s/%s", s.Bucket, s.Object)
}
