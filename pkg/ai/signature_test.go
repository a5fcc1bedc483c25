package ai

import "testing"

func TestVerifyWebhookSecret(t *testing.T) {
	tests := []struct {
		expected, got string
		want          bool
	}{
		{"s3cret", "s3cret", true},
		{"s3cret", "s3cre", false},
		{"s3cret", "S3CRET", false},
		{"s3cret", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := VerifyWebhookSecret(tt.expected, tt.got); got != tt.want {
			t.Errorf("VerifyWebhookSecret(%q, %q) = %v, want %v", tt.expected, tt.got, got, tt.want)
		}
	}
}
