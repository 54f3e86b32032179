// Package lookup adapts the external query services (Wolfram Alpha short and
// simple answers, Urban Dictionary, Oxford Dictionaries) to a single
// request-in / result-out contract. Every call is a single attempt: the
// gateway never retries and never switches modes on its own.
package lookup

import (
	"errors"
	"fmt"
)

// Mode selects which kind of answer is requested.
type Mode int

const (
	ModeShortAnswer Mode = iota
	ModeImageAnswer
	ModeDefinition
)

func (m Mode) String() string {
	switch m {
	case ModeShortAnswer:
		return "short_answer"
	case ModeImageAnswer:
		return "image_answer"
	case ModeDefinition:
		return "definition"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Dictionary selects the provider for ModeDefinition.
type Dictionary int

const (
	DictionaryUrban Dictionary = iota
	DictionaryOxford
)

func (d Dictionary) String() string {
	switch d {
	case DictionaryUrban:
		return "urban"
	case DictionaryOxford:
		return "oxford"
	default:
		return fmt.Sprintf("dictionary(%d)", int(d))
	}
}

// Request is created per invocation and discarded after the reply.
type Request struct {
	Query      string
	Mode       Mode
	Dictionary Dictionary
}

// Result is one of TextResult, ImageResult, DefinitionResult or *Failure.
type Result interface {
	isResult()
}

// TextResult is a concise textual answer.
type TextResult struct {
	Text string
}

// ImageResult is a rendered answer image.
type ImageResult struct {
	Data []byte
	MIME string
	// Ext includes the leading dot, e.g. ".gif".
	Ext string
}

// DefinitionResult is the first sense of a dictionary entry.
// Example is empty when the entry carries none.
type DefinitionResult struct {
	Definition string
	Example    string
}

func (TextResult) isResult()       {}
func (ImageResult) isResult()      {}
func (DefinitionResult) isResult() {}
func (*Failure) isResult()         {}

// Kind classifies a Failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNoShortAnswer is the one recoverable failure: the short-answer
	// service has no concise result but the same query can be rendered.
	KindNoShortAnswer
	KindNotFound
	KindMalformed
	KindStatus
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNoShortAnswer:
		return "no_short_answer"
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	case KindStatus:
		return "status"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Sentinel causes carried by Failure.Err.
var (
	ErrNoShortAnswer = errors.New("no short answer available")
	ErrNotFound      = errors.New("nothing found")
	ErrMalformed     = errors.New("malformed response")
	ErrUnsupported   = errors.New("unsupported lookup mode")
)

// Failure is the error variant of Result. Reason is the text surfaced to
// the user verbatim.
type Failure struct {
	Kind        Kind
	Reason      string
	Recoverable bool
	Err         error
}

func (f *Failure) Error() string {
	return f.Reason
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NoShortAnswer reports whether r is the recoverable "no short answer
// available" failure.
func NoShortAnswer(r Result) bool {
	f, ok := r.(*Failure)
	return ok && f.Recoverable && f.Kind == KindNoShortAnswer
}

// Outcome is a short label for metrics and logs.
func Outcome(r Result) string {
	switch v := r.(type) {
	case TextResult:
		return "text"
	case ImageResult:
		return "image"
	case DefinitionResult:
		return "definition"
	case *Failure:
		return "failure_" + v.Kind.String()
	default:
		return "unknown"
	}
}

func newFailure(kind Kind, reason string, cause error) *Failure {
	return &Failure{
		Kind:        kind,
		Reason:      reason,
		Recoverable: kind == KindNoShortAnswer,
		Err:         cause,
	}
}
