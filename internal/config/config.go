package config

import (
	"encoding/base64"
	"fmt"
)

const defaultMeetAPIURL = "https://api.100ms.live/v2"

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	SigningKey     []byte
	AllowedOrigins []string

	// video-room provider settings; the meet namespace is served even when
	// the token is empty, provider calls will just fail and be reported to
	// the client
	MeetAPIURL     string
	MeetToken      string
	MeetTemplateId string
}

type MeetConfig struct {
	APIURL     string
	Token      string
	TemplateId string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, databaseDSN, base64Secret string, allowedOrigins []string, meet MeetConfig) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	if meet.APIURL == "" {
		meet.APIURL = defaultMeetAPIURL
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		MeetAPIURL:     meet.APIURL,
		MeetToken:      meet.Token,
		MeetTemplateId: meet.TemplateId,
	}, nil
}
