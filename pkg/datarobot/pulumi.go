package datarobot

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Helper functions for optional provider inputs

func optionalString(value string) pulumi.StringPtrInput {
	if value == "" {
		return nil
	}

	return pulumi.String(value)
}

func optionalInt(value *int) pulumi.IntPtrInput {
	if value == nil {
		return nil
	}

	return pulumi.Int(*value)
}

func setDefaultString(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}

	return value
}
