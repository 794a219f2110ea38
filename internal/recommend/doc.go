// Package recommend is the suggestion client: it turns a sample of the
// viewer's lists into a language model prompt and interprets the reply.
//
// Model output is untrusted text. Parse tries a structured JSON literal first
// and falls back to field-marker extraction; the ParseResult records which
// strategy succeeded. Transport failures and unparseable replies both surface
// as services.ErrUnavailable.
package recommend
