package pipeline

import (
	"errors"
	"strings"

	"payfill/internal/agent"
)

// FriendlyError is a safe, non-leaky message pair shown to end users in
// place of the raw technical error.
type FriendlyError struct {
	Title   string
	Message string
	Action  string
}

var friendlyErrors = map[string]FriendlyError{
	"api_key_invalid": {
		Title:   "API Key Issue",
		Message: "Your API key appears to be invalid. Please check the configured key.",
		Action:  "Verify API Key",
	},
	"api_key_missing": {
		Title:   "API Key Missing",
		Message: "No API key found. Please configure an API key.",
		Action:  "Add API Key",
	},
	"rate_limit": {
		Title:   "Rate Limit Exceeded",
		Message: "Too many requests. Please wait a moment before trying again.",
		Action:  "Try Again Later",
	},
	"budget_exceeded": {
		Title:   "Daily Budget Reached",
		Message: "The daily processing budget has been reached. Please try again tomorrow.",
		Action:  "Try Again Tomorrow",
	},
	"network": {
		Title:   "Connection Issue",
		Message: "Unable to connect to the service. Please check your internet connection.",
		Action:  "Retry",
	},
	"timeout": {
		Title:   "Request Timeout",
		Message: "The request took too long. Please try again.",
		Action:  "Retry",
	},
	"server": {
		Title:   "Service Unavailable",
		Message: "The extraction service is temporarily unavailable. Please try again shortly.",
		Action:  "Retry",
	},
	"extraction_failed": {
		Title:   "Extraction Failed",
		Message: "Unable to extract data from the document. The image may be unclear or not a financial document.",
		Action:  "Try Different Image",
	},
	"unknown_document": {
		Title:   "Unrecognized Document",
		Message: "This document doesn't appear to be a financial document. Please upload an invoice, receipt, bill, or statement.",
		Action:  "Upload Different Document",
	},
	"low_quality": {
		Title:   "Poor Image Quality",
		Message: "The image quality is too low to extract reliable data. Please upload a clearer image.",
		Action:  "Upload Better Image",
	},
	"unknown": {
		Title:   "Something Went Wrong",
		Message: "An unexpected error occurred. Please try again or contact support if the issue persists.",
		Action:  "Try Again",
	},
}

// classify maps an error to its FriendlyError. Classified agent errors map
// by kind; everything else falls back to message sniffing and then to the
// generic entry.
func classify(err error) FriendlyError {
	var agentErr *agent.Error
	if errors.As(err, &agentErr) {
		switch agentErr.Kind {
		case agent.KindAuthentication:
			return friendlyErrors["api_key_invalid"]
		case agent.KindRateLimit:
			return friendlyErrors["rate_limit"]
		case agent.KindBudgetExceeded:
			return friendlyErrors["budget_exceeded"]
		case agent.KindNetwork:
			return friendlyErrors["network"]
		case agent.KindTimeout:
			return friendlyErrors["timeout"]
		case agent.KindServer:
			return friendlyErrors["server"]
		case agent.KindInvalidResponse:
			return friendlyErrors["extraction_failed"]
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication_error") || strings.Contains(msg, "invalid x-api-key"):
		return friendlyErrors["api_key_invalid"]
	case strings.Contains(msg, "api key"):
		return friendlyErrors["api_key_missing"]
	case strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429"):
		return friendlyErrors["rate_limit"]
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return friendlyErrors["timeout"]
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection refused"):
		return friendlyErrors["network"]
	default:
		return friendlyErrors["unknown"]
	}
}

// classifyUnknownDocument returns the fixed message for documents whose
// type could not be identified.
func classifyUnknownDocument() FriendlyError {
	return friendlyErrors["unknown_document"]
}

// classifyLowQuality returns the fixed message for low extraction quality.
func classifyLowQuality() FriendlyError {
	return friendlyErrors["low_quality"]
}
