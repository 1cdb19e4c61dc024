package sftpclient

import (
	"context"
	"testing"
)

func TestConfigured(t *testing.T) {
	if (Config{}).Configured() {
		t.Error("Expected empty config to be unconfigured")
	}
	c := Config{Host: "h", User: "u", Pass: "p"}
	if !c.Configured() {
		t.Error("Expected host+user+pass to be enough")
	}
	c.Pass = ""
	if c.Configured() {
		t.Error("Expected missing pass to be unconfigured")
	}
}

func TestUploadFileRejectsMissingConfig(t *testing.T) {
	err := UploadFile(context.Background(), Config{}, "/tmp/nope")
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
}
