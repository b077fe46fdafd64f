package utils

import (
	"net/http"
	"time"
)

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
	SetHeader(key, value string)
}

type DownloadEntry struct {
	URL    string `yaml:"link"`
	Resume *bool  `yaml:"resume,omitempty"`
}
