package config

import (
	"fmt"
	"os"
	"strings"
)

// Backend identifiers accepted by ASR_BACKEND and TRANSLATION_BACKEND.
const (
	ASRWhisper = "whisper"
	ASRGoogle  = "google"

	TranslateOpenAI = "openai"
	TranslateCohere = "cohere"
)

// Config carries every externally supplied setting. It is built once at
// startup and passed into constructors; nothing reads the environment
// mid-pipeline.
type Config struct {
	Port    string
	TempDir string

	// ASR backend selection and credentials
	ASRBackend    string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	WhisperModel  string

	GoogleCredentialsFile string
	GoogleAPIKey          string

	// Translation backend selection and credentials
	TranslationBackend string
	OpenAIChatModel    string
	CohereAPIKey       string
	CohereModel        string

	// Optional S3 export sink; uploads are skipped when Bucket is empty.
	S3Bucket string
	S3Region string
	S3Prefix string
}

// Load reads the configuration from the environment with fallbacks that
// match the hosted defaults. Call godotenv.Load first so a local .env file
// is honored.
func Load() Config {
	return Config{
		Port:    envOr("PORT", "8080"),
		TempDir: envOr("TEMP_DIR", TempDirName),

		ASRBackend:    strings.ToLower(envOr("ASR_BACKEND", ASRWhisper)),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		WhisperModel:  os.Getenv("WHISPER_MODEL"),

		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GoogleAPIKey:          os.Getenv("GOOGLE_API_KEY"),

		TranslationBackend: strings.ToLower(envOr("TRANSLATION_BACKEND", TranslateOpenAI)),
		OpenAIChatModel:    os.Getenv("OPENAI_CHAT_MODEL"),
		CohereAPIKey:       os.Getenv("COHERE_API_KEY"),
		CohereModel:        os.Getenv("COHERE_MODEL"),

		S3Bucket: strings.TrimSpace(os.Getenv("SRT_S3_BUCKET")),
		S3Region: strings.TrimSpace(os.Getenv("SRT_S3_REGION")),
		S3Prefix: strings.Trim(strings.TrimSpace(os.Getenv("SRT_S3_PREFIX")), "/"),
	}
}

// Validate checks that the selected backends have the credentials they need.
// It runs once at startup so misconfiguration surfaces before the first job.
func (c Config) Validate() error {
	switch c.ASRBackend {
	case ASRWhisper:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("ASR_BACKEND=%s requires OPENAI_API_KEY", c.ASRBackend)
		}
	case ASRGoogle:
		if c.GoogleCredentialsFile == "" && c.GoogleAPIKey == "" {
			return fmt.Errorf("ASR_BACKEND=%s requires GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_API_KEY", c.ASRBackend)
		}
	default:
		return fmt.Errorf("unknown ASR_BACKEND %q (use %s or %s)", c.ASRBackend, ASRWhisper, ASRGoogle)
	}

	switch c.TranslationBackend {
	case TranslateOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("TRANSLATION_BACKEND=%s requires OPENAI_API_KEY", c.TranslationBackend)
		}
	case TranslateCohere:
		if c.CohereAPIKey == "" {
			return fmt.Errorf("TRANSLATION_BACKEND=%s requires COHERE_API_KEY", c.TranslationBackend)
		}
	default:
		return fmt.Errorf("unknown TRANSLATION_BACKEND %q (use %s or %s)", c.TranslationBackend, TranslateOpenAI, TranslateCohere)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
