package minio

// Config defines the configuration for the MinIO client.
// evalhub only reads the content corpus from object storage, so the
// configuration is limited to connection details.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
}

// ConnectionConfig contains MinIO server connection details.
type ConnectionConfig struct {
	// Endpoint is the MinIO server endpoint, e.g., "localhost:9000"
	Endpoint string `yaml:"endpoint" envconfig:"MINIO_ENDPOINT"`

	// AccessKeyID is the MinIO access key
	AccessKeyID string `yaml:"access_key_id" envconfig:"MINIO_ACCESS_KEY_ID"`

	// SecretAccessKey is the MinIO secret key
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"MINIO_SECRET_ACCESS_KEY"`

	// UseSSL selects https when true
	UseSSL bool `yaml:"use_ssl" envconfig:"MINIO_USE_SSL"`

	// BucketName is the bucket holding the content corpus
	BucketName string `yaml:"bucket_name" envconfig:"MINIO_BUCKET_NAME"`

	// Region for the bucket (e.g., "us-east-1")
	Region string `yaml:"region" envconfig:"MINIO_REGION"`
}

// Logger defines the interface for logging operations in the minio package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
