package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/client"
	s3storage "github.com/tendant/simple-upload/pkg/simpleupload/storage/s3"
)

func main() {
	// Define command-line flags
	region := flag.String("region", "us-east-1", "AWS region")
	bucket := flag.String("bucket", "", "S3 bucket name")
	accessKey := flag.String("access-key", "", "AWS access key ID")
	secretKey := flag.String("secret-key", "", "AWS secret access key")
	endpoint := flag.String("endpoint", "", "Custom S3 endpoint (for MinIO, etc.)")
	usePathStyle := flag.Bool("use-path-style", false, "Use path-style addressing")
	enableSSE := flag.Bool("enable-sse", false, "Enable server-side encryption")
	sseAlgorithm := flag.String("sse-algorithm", "AES256", "SSE algorithm (AES256 or aws:kms)")
	sseKMSKeyID := flag.String("sse-kms-key-id", "", "KMS key ID for aws:kms algorithm")
	expiry := flag.Duration("expiry", simpleupload.DefaultURLExpiry, "Lifetime of presigned URLs")
	createBucket := flag.Bool("create-bucket", false, "Create bucket if it doesn't exist")

	// Define commands
	command := flag.String("command", "help", "Command to execute: put, get, head, url-upload, url-download, help")
	objectKey := flag.String("key", "", "Object key for operations")
	filePath := flag.String("file", "", "File path for put/get")

	// MinIO shortcut
	useMinio := flag.Bool("use-minio", false, "Use MinIO defaults (sets endpoint, path-style, etc.)")
	minioEndpoint := flag.String("minio-endpoint", "http://localhost:9000", "MinIO server endpoint")

	flag.Parse()

	if *useMinio {
		*endpoint = *minioEndpoint
		*usePathStyle = true
		*createBucket = true
		if *accessKey == "" {
			*accessKey = "minioadmin"
		}
		if *secretKey == "" {
			*secretKey = "minioadmin"
		}
	}

	cmd := strings.ToLower(*command)
	if cmd == "help" || cmd == "" {
		printHelp()
		return
	}

	if *bucket == "" {
		*bucket = os.Getenv("AWS_S3_BUCKET")
	}
	if *bucket == "" {
		log.Fatal("Bucket name is required")
	}
	if *accessKey == "" {
		*accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if *secretKey == "" {
		*secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if *objectKey == "" {
		log.Fatal("Object key is required")
	}

	config := s3storage.Config{
		Region:                 *region,
		Bucket:                 *bucket,
		AccessKeyID:            *accessKey,
		SecretAccessKey:        *secretKey,
		Endpoint:               *endpoint,
		UsePathStyle:           *usePathStyle,
		EnableSSE:              *enableSSE,
		SSEAlgorithm:           *sseAlgorithm,
		SSEKMSKeyID:            *sseKMSKeyID,
		CreateBucketIfNotExist: *createBucket,
	}

	fmt.Println("Initializing S3 gateway with the following configuration:")
	fmt.Printf("  Region: %s\n", config.Region)
	fmt.Printf("  Bucket: %s\n", config.Bucket)
	fmt.Printf("  Endpoint: %s\n", config.Endpoint)
	fmt.Printf("  Use Path Style: %v\n", config.UsePathStyle)
	fmt.Printf("  Create Bucket If Not Exist: %v\n", config.CreateBucketIfNotExist)
	fmt.Printf("  Server-side Encryption: %v\n", config.EnableSSE)
	if config.EnableSSE {
		fmt.Printf("  SSE Algorithm: %s\n", config.SSEAlgorithm)
	}
	fmt.Println()

	gateway, err := s3storage.New(config)
	if err != nil {
		log.Fatalf("Failed to initialize S3 gateway: %v", err)
	}

	ctx := context.Background()

	switch cmd {
	case "put":
		if *filePath == "" {
			log.Fatal("File path is required for put")
		}
		file, err := client.OpenFile(*filePath)
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}

		startTime := time.Now()
		url, err := gateway.PresignPut(ctx, *objectKey, file.Type, *expiry)
		if err != nil {
			log.Fatalf("Failed to get upload URL: %v", err)
		}

		body, err := file.Open()
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}
		defer body.Close()

		fmt.Printf("Uploading %s (%s, %s) to %s...\n", *filePath, file.Type, client.FormatFileSize(file.Size), *objectKey)
		err = client.NewTransfer().Put(ctx, url, body, file.Size, file.Type, func(p int) {
			fmt.Printf("\r  %3d%%", p)
		})
		fmt.Println()
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		fmt.Printf("Upload successful (took %v)\n", time.Since(startTime))

	case "get":
		if *filePath == "" {
			log.Fatal("File path is required for get")
		}

		startTime := time.Now()
		url, err := gateway.PresignGet(ctx, *objectKey, *expiry)
		if err != nil {
			log.Fatalf("Failed to get download URL: %v", err)
		}

		n, err := fetch(ctx, url, *filePath)
		if err != nil {
			log.Fatalf("Download failed: %v", err)
		}
		fmt.Printf("Download successful: %d bytes (took %v)\n", n, time.Since(startTime))

	case "head":
		meta, err := gateway.HeadObject(ctx, *objectKey)
		if errors.Is(err, simpleupload.ErrObjectNotFound) {
			log.Fatalf("Object %s does not exist", *objectKey)
		}
		if err != nil {
			log.Fatalf("Head failed: %v", err)
		}
		fmt.Printf("Content Type:  %s\n", meta.ContentType)
		fmt.Printf("Size:          %d bytes\n", meta.ContentLength)
		fmt.Printf("Last Modified: %s\n", meta.LastModified.Format(time.RFC3339))
		fmt.Printf("ETag:          %s\n", meta.ETag)

	case "url-upload":
		contentType := "application/octet-stream"
		if *filePath != "" {
			if file, err := client.OpenFile(*filePath); err == nil {
				contentType = file.Type
			}
		}

		startTime := time.Now()
		url, err := gateway.PresignPut(ctx, *objectKey, contentType, *expiry)
		if err != nil {
			log.Fatalf("Failed to get upload URL: %v", err)
		}
		fmt.Printf("Upload URL for %s (valid for %v):\n%s\n", *objectKey, *expiry, url)
		fmt.Printf("Generated in %v\n", time.Since(startTime))
		fmt.Println("\nTo use this URL with curl:")
		fmt.Printf("curl -X PUT -H \"Content-Type: %s\" -T your-file \"%s\"\n", contentType, url)

	case "url-download":
		startTime := time.Now()
		url, err := gateway.PresignGet(ctx, *objectKey, *expiry)
		if err != nil {
			log.Fatalf("Failed to get download URL: %v", err)
		}
		fmt.Printf("Download URL for %s (valid for %v):\n%s\n", *objectKey, *expiry, url)
		fmt.Printf("Generated in %v\n", time.Since(startTime))
		fmt.Println("\nTo use this URL with curl:")
		fmt.Printf("curl \"%s\" -o downloaded-file\n", url)

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

func fetch(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return io.Copy(file, resp.Body)
}

func printHelp() {
	fmt.Println("S3 Gateway Check")
	fmt.Println("\nCommands:")
	fmt.Println("  put           Presign a PUT and upload a local file through it")
	fmt.Println("  get           Presign a GET and download the object to a local file")
	fmt.Println("  head          Show object metadata")
	fmt.Println("  url-upload    Generate a pre-signed upload URL")
	fmt.Println("  url-download  Generate a pre-signed download URL")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nFlags:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  Upload a file to MinIO:")
	fmt.Println("    s3check -use-minio -bucket my-bucket -command put -key uploads/file.txt -file ./local-file.txt")
	fmt.Println("\n  Generate a pre-signed download URL:")
	fmt.Println("    s3check -bucket my-bucket -command url-download -key uploads/file.txt")
}
