// Package smoothcomp implements event discovery and competitor extraction
// against the Smoothcomp event-listing site and its compseek mirror.
//
// The source pages carry no stable schema, so nothing here trusts the
// markup: discovery collects every URL that looks like an event link (from
// anchors and from raw markup, which catches links buried in script
// payloads) and classifies candidates through a tiered country/year
// cascade, and competitor extraction runs five independent strategies over
// an event's sub-pages, folding their output through a shared
// deduplication key. Empty results are a normal outcome at every level;
// transport failures on individual sub-pages are skipped, and only a
// failure to fetch a required listing page surfaces as an error.
package smoothcomp
