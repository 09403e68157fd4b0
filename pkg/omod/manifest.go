// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"bytes"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

const (
	manifestPath       = "META-INF/MANIFEST.MF"
	manifestDir        = "META-INF/"
	manifestVersion    = "1.0"
	manifestLineLength = 72
)

var manifestHeaderName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,69}$`)

type manifestHeader struct {
	name  string
	value string
}

// buildManifest renders the main section of a jar-style manifest. Headers
// are validated before anything is written.
func buildManifest(cfg ManifestConfig, createdBy string) ([]byte, error) {
	headers := []manifestHeader{
		{"Manifest-Version", manifestVersion},
		{"Created-By", createdBy},
	}
	if cfg.MainClass != "" {
		headers = append(headers, manifestHeader{"Main-Class", cfg.MainClass})
	}
	if cfg.AddDefaultEntries {
		for _, h := range []manifestHeader{
			{"Implementation-Title", cfg.ImplementationTitle},
			{"Implementation-Version", cfg.ImplementationVersion},
			{"Implementation-Vendor", cfg.ImplementationVendor},
		} {
			if h.value != "" {
				headers = append(headers, h)
			}
		}
	}

	names := maps.Keys(cfg.Entries)
	slices.Sort(names)
	dedicated := len(headers)
	for _, name := range names {
		// Entries may not repeat a header written from a dedicated setting.
		if slices.ContainsFunc(headers[:dedicated], func(h manifestHeader) bool { return strings.EqualFold(h.name, name) }) {
			return nil, &ManifestError{Header: name, Reason: "header is already set"}
		}
		headers = append(headers, manifestHeader{name, cfg.Entries[name]})
	}

	var buf bytes.Buffer
	for _, h := range headers {
		if !manifestHeaderName.MatchString(h.name) {
			return nil, &ManifestError{Header: h.name, Reason: "name must match [A-Za-z0-9][A-Za-z0-9_-]{0,69}"}
		}
		if strings.ContainsAny(h.value, "\r\n\x00") {
			return nil, &ManifestError{Header: h.name, Reason: "value must not contain line breaks or NUL"}
		}
		writeManifestLine(&buf, h.name+": "+h.value)
	}
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

// writeManifestLine writes line wrapped at 72 bytes, continuing on lines
// that start with a single space. Wrapping never splits a UTF-8 sequence.
func writeManifestLine(buf *bytes.Buffer, line string) {
	limit := manifestLineLength
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8Start(line[cut]) {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = manifestLineLength - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }
