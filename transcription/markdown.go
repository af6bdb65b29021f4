package transcription

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LineBreakInterval is the number of segments between blank lines.
const LineBreakInterval = 5

// RenderMarkdown writes the transcript report: a header naming the audio file,
// model and language, then one segment per line with a blank line after
// every LineBreakInterval segments.
func RenderMarkdown(w io.Writer, req Request, resp *Response) error {
	bw := bufio.NewWriter(w)

	language := req.Language
	if resp.Language != "" {
		language = resp.Language
	}
	source := req.SourceName
	if source == "" {
		source = filepath.Base(req.AudioPath)
	}

	fmt.Fprintf(bw, "# Transcription Results\n\n")
	fmt.Fprintf(bw, "## Audio File: %s\n\n", source)
	fmt.Fprintf(bw, "## Model: %s\n\n", req.Model)
	fmt.Fprintf(bw, "## Language: %s\n\n", language)
	fmt.Fprintf(bw, "## Transcription:\n\n")

	segments := resp.Segments
	if len(segments) == 0 && resp.Text != "" {
		segments = []Segment{{Text: resp.Text}}
	}
	for i, seg := range segments {
		fmt.Fprintf(bw, " %s\n", strings.TrimSpace(seg.Text))
		if i%LineBreakInterval == LineBreakInterval-1 {
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// WriteMarkdown renders the report into path. The file appears only once it
// is complete.
func WriteMarkdown(path string, req Request, resp *Response) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = RenderMarkdown(tmp, req, resp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
