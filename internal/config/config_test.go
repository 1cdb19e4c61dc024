package config

import (
	"os"
	"testing"
)

func TestGetenv(t *testing.T) {
	// Test with empty environment variable
	os.Unsetenv("TEST_GETENV")
	result := getenv("TEST_GETENV", "default")
	if result != "default" {
		t.Errorf("Expected default value 'default', got '%s'", result)
	}

	// Test with set environment variable
	os.Setenv("TEST_GETENV", "test-value")
	result = getenv("TEST_GETENV", "default")
	if result != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", result)
	}

	// Clean up
	os.Unsetenv("TEST_GETENV")
}

func TestGetenvInt(t *testing.T) {
	os.Unsetenv("TEST_GETENV_INT")
	result := getenvInt("TEST_GETENV_INT", 42)
	if result != 42 {
		t.Errorf("Expected default value 42, got %d", result)
	}

	os.Setenv("TEST_GETENV_INT", "100")
	result = getenvInt("TEST_GETENV_INT", 42)
	if result != 100 {
		t.Errorf("Expected 100, got %d", result)
	}

	os.Setenv("TEST_GETENV_INT", "not-an-int")
	result = getenvInt("TEST_GETENV_INT", 42)
	if result != 42 {
		t.Errorf("Expected default value 42, got %d", result)
	}

	os.Unsetenv("TEST_GETENV_INT")
}

func TestValidate(t *testing.T) {
	c := Config{CalendarID: "abc@group.calendar.google.com", Timezone: "Asia/Vladivostok", HorizonDays: 180}
	if err := c.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	c.CalendarID = ""
	if err := c.Validate(); err == nil {
		t.Error("Expected error for missing calendar id")
	}

	c = Config{CalendarID: "x", Timezone: "Not/AZone", HorizonDays: 180}
	if err := c.Validate(); err == nil {
		t.Error("Expected error for unknown timezone")
	}

	c = Config{CalendarID: "x", Timezone: "UTC", HorizonDays: 0}
	if err := c.Validate(); err == nil {
		t.Error("Expected error for zero horizon")
	}
}
