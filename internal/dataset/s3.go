package dataset

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the slice of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader stages a dataset's table dumps into an S3 bucket so the cloud
// engines can bulk-load them.
type Uploader struct {
	client PutObjectAPI
	bucket string
}

// NewUploader creates an uploader for the given bucket.
func NewUploader(client PutObjectAPI, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// UploadDataset uploads every table file concurrently, keyed as
// <dataset>/<table>.tsv[.gz], and returns the first failure.
func (u *Uploader) UploadDataset(ctx context.Context, ds Dataset) error {
	files, err := ds.TableFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("dataset `%s` has no table files to upload", ds.Name)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, len(files))

	for _, file := range files {
		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			if err := u.uploadFile(ctx, file, ds.ObjectKey(file)); err != nil {
				errc <- fmt.Errorf("failed to upload %s: %w", file, err)
				cancel()
			}
		}(file)
	}

	wg.Wait()
	close(errc)
	return <-errc
}

func (u *Uploader) uploadFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/tab-separated-values"),
	}
	if strings.HasSuffix(path, ".gz") {
		input.ContentEncoding = aws.String("gzip")
	}

	_, err = u.client.PutObject(ctx, input)
	return err
}
