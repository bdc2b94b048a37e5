// Package vendors provides vendor-specific prompt optimization guidance.
//
// DESIGN: The optimizer targets a closed set of downstream LLM vendors
// (OpenAI, Claude, Grok, Gemini, Qwen, DeepSeek). Each vendor has its own
// prompting conventions. Adapters package those conventions as static data:
//
//   - SystemInstructions: how the generation backend should rewrite prompts
//   - EnhancementNotes:   human-readable summary of what was emphasized
//   - Metadata:           recommended model, temperature, format, features
//
// Adapters are stateless and perform no I/O. All adaptiveness to the user's
// prompt happens in the optimizer through the generation call.
//
// To add a new vendor: add a Vendor constant, implement Adapter in its own
// file, and include it in Builtin().
package vendors

import (
	"errors"
	"fmt"
	"strings"
)

// Vendor identifies a supported downstream LLM vendor.
type Vendor string

// Supported vendors.
const (
	VendorOpenAI   Vendor = "openai"
	VendorClaude   Vendor = "claude"
	VendorGrok     Vendor = "grok"
	VendorGemini   Vendor = "gemini"
	VendorQwen     Vendor = "qwen"
	VendorDeepSeek Vendor = "deepseek"
)

// ErrVendorNotSupported is returned when a vendor is unknown or has no
// registered adapter.
var ErrVendorNotSupported = errors.New("vendor not supported")

// canonicalOrder is the display and iteration order for vendors.
var canonicalOrder = []Vendor{
	VendorOpenAI,
	VendorClaude,
	VendorGrok,
	VendorGemini,
	VendorQwen,
	VendorDeepSeek,
}

var displayNames = map[Vendor]string{
	VendorOpenAI:   "OpenAI",
	VendorClaude:   "Claude",
	VendorGrok:     "Grok",
	VendorGemini:   "Gemini",
	VendorQwen:     "Qwen",
	VendorDeepSeek: "DeepSeek",
}

// All returns every known vendor in canonical order.
func All() []Vendor {
	out := make([]Vendor, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// ParseVendor converts a user-supplied identifier into a Vendor.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseVendor(s string) (Vendor, error) {
	v := Vendor(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrVendorNotSupported, s)
	}
	return v, nil
}

// Valid reports whether v is one of the known vendors.
func (v Vendor) Valid() bool {
	_, ok := displayNames[v]
	return ok
}

// String returns the wire identifier.
func (v Vendor) String() string { return string(v) }

// DisplayName returns the human-readable vendor name.
func (v Vendor) DisplayName() string {
	if name, ok := displayNames[v]; ok {
		return name
	}
	return string(v)
}

// =============================================================================
// METADATA
// =============================================================================

// Metadata keys. Every adapter populates all of them.
const (
	MetaVendor                    = "vendor"
	MetaFormat                    = "format"
	MetaTemperatureRecommendation = "temperature_recommendation"
	MetaModelRecommendation       = "model_recommendation"
	MetaFeatures                  = "features"
)

// Metadata is the vendor recommendation bundle returned with every result.
type Metadata map[string]any

// String returns the value of a string-valued key, or "" when absent.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Features returns the feature tags.
func (m Metadata) Features() []string {
	f, _ := m[MetaFeatures].([]string)
	return f
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter supplies the static optimization guidance for one vendor.
// Output is constant across calls; implementations must be safe for
// concurrent use.
type Adapter interface {
	// Vendor returns the vendor this adapter handles.
	Vendor() Vendor

	// SystemInstructions returns the vendor-tuned instruction block given to
	// the generation backend. It always carries the language rules: the
	// optimized prompt is written in English and ends with a
	// "Respond in <detected language>" directive.
	SystemInstructions() string

	// EnhancementNotes describes what the optimization emphasizes.
	EnhancementNotes() string

	// Metadata returns a fresh copy of the recommendation bundle.
	Metadata() Metadata
}

// BaseAdapter implements Adapter from static fields.
// Vendor files embed it and fill the fields in their constructor.
type BaseAdapter struct {
	vendor       Vendor
	instructions string
	notes        string
	format       string
	temperature  string
	models       string
	features     []string
}

// Vendor returns the vendor.
func (a *BaseAdapter) Vendor() Vendor { return a.vendor }

// SystemInstructions returns the instruction block.
func (a *BaseAdapter) SystemInstructions() string { return a.instructions }

// EnhancementNotes returns the enhancement notes.
func (a *BaseAdapter) EnhancementNotes() string { return a.notes }

// Metadata returns a new map on every call so callers cannot mutate the
// shared adapter.
func (a *BaseAdapter) Metadata() Metadata {
	features := make([]string, len(a.features))
	copy(features, a.features)
	return Metadata{
		MetaVendor:                    string(a.vendor),
		MetaFormat:                    a.format,
		MetaTemperatureRecommendation: a.temperature,
		MetaModelRecommendation:       a.models,
		MetaFeatures:                  features,
	}
}

// languageRules is shared by every vendor's instruction block.
const languageRules = `1. **Language Detection**: Detect the language of the user's original prompt
2. **Response Language**: Add "Respond in [detected language]" at the END of the optimized prompt
3. **Prompt Language**: Write the ENTIRE optimized prompt in ENGLISH, regardless of the input language`

// Builtin returns one adapter per supported vendor in canonical order.
func Builtin() []Adapter {
	return []Adapter{
		NewOpenAIAdapter(),
		NewClaudeAdapter(),
		NewGrokAdapter(),
		NewGeminiAdapter(),
		NewQwenAdapter(),
		NewDeepSeekAdapter(),
	}
}
