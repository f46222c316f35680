package publishers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported sink types.
const (
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeHTTP      = "http"
	TypeGCPPubSub = "gcp_pubsub"

	httpDefaultTimeoutSeconds = 5
)

// PublisherConfig is one sink entry of the publishers file. Exactly the block
// matching Type is read.
type PublisherConfig struct {
	ID        string               `yaml:"id"`
	Type      string               `yaml:"type"`
	Enabled   *bool                `yaml:"enabled"`
	SQS       *SQSPublisherConfig  `yaml:"sqs"`
	SNS       *SNSPublisherConfig  `yaml:"sns"`
	HTTP      *HTTPPublisherConfig `yaml:"http"`
	GCPPubSub *GCPQueueConfig      `yaml:"gcp_pubsub"`
}

// AWSAuthConfig holds optional static credentials and endpoint overrides shared by AWS sinks.
// Empty credentials fall back to the default AWS credential chain.
type AWSAuthConfig struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

type SQSPublisherConfig struct {
	QueueURL      string `yaml:"uri"`
	AWSAuthConfig `yaml:",inline"`
}

type SNSPublisherConfig struct {
	TopicARN      string `yaml:"topic_arn"`
	AWSAuthConfig `yaml:",inline"`
}

type GCPQueueConfig struct {
	ProjectID       string `yaml:"project_id"`
	Topic           string `yaml:"topic"`
	CredentialsFile string `yaml:"credentials_file"`
}

// HTTPPublisherConfig describes a webhook that receives each reading.
type HTTPPublisherConfig struct {
	URL            string            `yaml:"url"`
	Method         string            `yaml:"method"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

// SinkSet is the validated content of a publishers file.
type SinkSet struct {
	entries []PublisherConfig
}

// LoadSinks reads a publishers file. The format is YAML; a JSON document is
// accepted as well since it is valid YAML. Unknown keys are rejected.
func LoadSinks(path string) (*SinkSet, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open publishers file: %w", err)
	}

	var doc struct {
		Publishers []PublisherConfig `yaml:"publishers"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode publishers file %s: %w", path, err)
	}
	if len(doc.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]struct{}, len(doc.Publishers))
	set := &SinkSet{entries: make([]PublisherConfig, 0, len(doc.Publishers))}
	for i, cfg := range doc.Publishers {
		cfg.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		set.entries = append(set.entries, cfg)
	}
	return set, nil
}

// All returns every entry in file order.
func (s *SinkSet) All() []PublisherConfig {
	if s == nil {
		return nil
	}
	return append([]PublisherConfig(nil), s.entries...)
}

// Enabled returns the entries that are not switched off, in file order.
func (s *SinkSet) Enabled() []PublisherConfig {
	if s == nil {
		return nil
	}
	var out []PublisherConfig
	for _, cfg := range s.entries {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

func (cfg *PublisherConfig) normalize() {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.AWSAuthConfig.normalize()
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.AWSAuthConfig.normalize()
		cfg.SNS = &c
	}
	if cfg.GCPPubSub != nil {
		c := *cfg.GCPPubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.GCPPubSub = &c
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.normalize()
		cfg.HTTP = &c
	}
}

func (c *AWSAuthConfig) normalize() {
	for _, f := range []*string{&c.Region, &c.Endpoint, &c.AccessKeyID, &c.SecretAccessKey, &c.SessionToken} {
		*f = strings.TrimSpace(*f)
	}
}

func (c *HTTPPublisherConfig) normalize() {
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = http.MethodPost
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	c.Headers = nil
	if len(headers) > 0 {
		c.Headers = headers
	}
}

// validate checks the block for the entry's type. A missing field is reported
// with its file path, e.g. "sqs.uri".
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	}

	var missing string
	switch cfg.Type {
	case TypeSQS:
		switch {
		case cfg.SQS == nil:
			missing = "sqs"
		case cfg.SQS.QueueURL == "":
			missing = "sqs.uri"
		case cfg.SQS.Region == "":
			missing = "sqs.region"
		default:
			return cfg.SQS.AWSAuthConfig.validate("sqs", cfg.ID)
		}
	case TypeSNS:
		switch {
		case cfg.SNS == nil:
			missing = "sns"
		case cfg.SNS.TopicARN == "":
			missing = "sns.topic_arn"
		case cfg.SNS.Region == "":
			missing = "sns.region"
		default:
			return cfg.SNS.AWSAuthConfig.validate("sns", cfg.ID)
		}
	case TypeHTTP:
		switch {
		case cfg.HTTP == nil:
			missing = "http"
		case cfg.HTTP.URL == "":
			missing = "http.url"
		}
	case TypeGCPPubSub:
		switch {
		case cfg.GCPPubSub == nil:
			missing = "gcp_pubsub"
		case cfg.GCPPubSub.ProjectID == "":
			missing = "gcp_pubsub.project_id"
		case cfg.GCPPubSub.Topic == "":
			missing = "gcp_pubsub.topic"
		}
	default:
		return fmt.Errorf("unsupported type %q for publisher %q", cfg.Type, cfg.ID)
	}
	if missing != "" {
		return fmt.Errorf("%s is required for publisher %q", missing, cfg.ID)
	}
	return nil
}

// validate requires static keys to be provided as a pair.
func (c AWSAuthConfig) validate(prefix, id string) error {
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("%s.access_key_id and %s.secret_access_key must be set together for publisher %q", prefix, prefix, id)
	}
	return nil
}
