// Package speech covers the server side of the voice assistant: classifying
// capture failures reported by the client and picking a synthesis voice.
package speech

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

type CaptureErrorCode string

const (
	NoSpeech         CaptureErrorCode = "no-speech"
	PermissionDenied CaptureErrorCode = "permission-denied"
	Network          CaptureErrorCode = "network"
	Other            CaptureErrorCode = "other"
)

// FallbackReply is spoken when the assistant could not understand the user.
const FallbackReply = "Maaf kijiye, main sun nahi paya. Kya aap phir se bolenge?"

type CaptureError struct {
	Code   CaptureErrorCode
	Detail string
}

func (e *CaptureError) Error() string {
	if e.Detail == "" {
		return "speech capture failed: " + string(e.Code)
	}
	return "speech capture failed: " + string(e.Code) + ": " + e.Detail
}

// Message is the inline text shown to the user.
func (e *CaptureError) Message() string {
	switch e.Code {
	case NoSpeech:
		return "Kuch sunai nahi diya. Please try speaking again."
	case PermissionDenied:
		return "Microphone access is blocked. Allow it in your browser settings to use voice ordering."
	case Network:
		return "Network problem while listening. Please try again."
	}
	return FallbackReply
}

// ParseCaptureError maps a recognition error code reported by the client.
// Browser-specific spellings are folded into the four known codes.
func ParseCaptureError(code, detail string) *CaptureError {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "no-speech", "no_speech", "speech-timeout":
		return &CaptureError{Code: NoSpeech, Detail: detail}
	case "permission-denied", "not-allowed", "service-not-allowed":
		return &CaptureError{Code: PermissionDenied, Detail: detail}
	case "network":
		return &CaptureError{Code: Network, Detail: detail}
	}
	return &CaptureError{Code: Other, Detail: detail}
}

// Retryable reports whether asking the user to try again can help.
func Retryable(err error) bool {
	var ce *CaptureError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == NoSpeech || ce.Code == Network || ce.Code == Other
}

type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// Preferences returns the locales to try for hint, most preferred first: the
// hint itself, then the main language of its region.
func Preferences(hint string) []language.Tag {
	tag, err := language.Parse(normalize(hint))
	if err != nil {
		tag = language.Make("en-IN")
	}
	prefs := []language.Tag{tag}
	region, conf := tag.Region()
	if conf == language.No {
		return prefs
	}
	und, err := language.Compose(region)
	if err != nil {
		return prefs
	}
	base, _ := und.Base()
	if own, _ := tag.Base(); base == own {
		return prefs
	}
	if regional, err := language.Compose(base, region); err == nil {
		prefs = append(prefs, regional)
	}
	return prefs
}

// SelectVoice picks a voice for hint: an exact regional match first, then
// the region's own language, then any English voice, then the platform
// default or the first voice. It reports false only when voices is empty.
func SelectVoice(voices []Voice, hint string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	prefs := Preferences(hint)

	for i, want := range prefs {
		wantBase, _ := want.Base()
		wantRegion, _ := want.Region()
		for _, v := range voices {
			tag, ok := parseVoice(v)
			if !ok {
				continue
			}
			b, _ := tag.Base()
			r, rc := tag.Region()
			if b == wantBase && (rc == language.Exact && r == wantRegion) {
				return v, true
			}
		}
		// Same language from another region, e.g. hi without a region.
		if i > 0 {
			for _, v := range voices {
				if tag, ok := parseVoice(v); ok {
					if b, _ := tag.Base(); b == wantBase {
						return v, true
					}
				}
			}
		}
	}

	english, _ := language.English.Base()
	for _, v := range voices {
		if tag, ok := parseVoice(v); ok {
			if b, _ := tag.Base(); b == english {
				return v, true
			}
		}
	}
	for _, v := range voices {
		if v.Default {
			return v, true
		}
	}
	return voices[0], true
}

func parseVoice(v Voice) (language.Tag, bool) {
	tag, err := language.Parse(normalize(v.Lang))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

func normalize(lang string) string {
	return strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
}
