package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vidfetch/internal/catalog"
	"vidfetch/internal/selection"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "info <url>",
		Short:         "Show the formats the backend offers for a video or playlist",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return runInfo(cmd, args[0], asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "Print the catalog as JSON")
	return cmd
}

func runInfo(cmd *cobra.Command, rawURL string, asJSON bool) error {
	a := appFrom(cmd)
	sess := a.newSession()
	if err := sess.FetchInfo(cmd.Context(), rawURL); err != nil {
		return exitError(err)
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return writeCatalogJSON(out, sess.State())
	}
	printCatalog(out, sess.State())
	return nil
}

type formatJSON struct {
	Quality  string `json:"quality"`
	Ext      string `json:"ext"`
	Filesize int64  `json:"filesize,omitempty"`
}

type itemJSON struct {
	Title        string       `json:"title"`
	Thumbnail    string       `json:"thumbnail,omitempty"`
	Duration     int          `json:"duration"`
	Author       string       `json:"author,omitempty"`
	ViewCount    *int64       `json:"view_count,omitempty"`
	VideoFormats []formatJSON `json:"video_formats,omitempty"`
	AudioFormats []formatJSON `json:"audio_formats,omitempty"`
}

type catalogJSON struct {
	Type       string     `json:"type"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Item       *itemJSON  `json:"item,omitempty"`
	VideoCount int        `json:"video_count,omitempty"`
	Videos     []itemJSON `json:"videos,omitempty"`
	Defaults   struct {
		Type    string `json:"type"`
		Quality string `json:"quality"`
		Format  string `json:"format"`
	} `json:"defaults"`
}

func toFormatsJSON(in []catalog.FormatOption) []formatJSON {
	out := make([]formatJSON, 0, len(in))
	for _, f := range in {
		out = append(out, formatJSON{Quality: f.Quality, Ext: f.ContainerExt, Filesize: f.FileSizeBytes})
	}
	return out
}

func toItemJSON(m catalog.MediaItem) itemJSON {
	return itemJSON{
		Title:        m.Title,
		Thumbnail:    m.ThumbnailURL,
		Duration:     m.DurationSeconds,
		Author:       m.Author,
		ViewCount:    m.ViewCount,
		VideoFormats: toFormatsJSON(m.VideoFormats),
		AudioFormats: toFormatsJSON(m.AudioFormats),
	}
}

func writeCatalogJSON(w io.Writer, st *selection.State) error {
	c := st.Catalog()
	var doc catalogJSON
	doc.Type = c.Kind().String()
	doc.URL = st.SourceURL
	doc.Title = c.Title()
	if item, ok := c.Item(); ok {
		ij := toItemJSON(item)
		doc.Item = &ij
	}
	if p, ok := c.Playlist(); ok {
		doc.VideoCount = p.ItemCount
		for _, it := range p.PreviewItems {
			doc.Videos = append(doc.Videos, toItemJSON(it))
		}
	}
	doc.Defaults.Type = string(st.MediaKind)
	doc.Defaults.Quality = st.Quality
	doc.Defaults.Format = st.ContainerFormat

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func printCatalog(w io.Writer, st *selection.State) {
	c := st.Catalog()
	switch c.Kind() {
	case catalog.KindSingle:
		item, _ := c.Item()
		fmt.Fprintf(w, "Title:     %s\n", item.Title)
		if item.Author != "" {
			fmt.Fprintf(w, "Author:    %s\n", item.Author)
		}
		fmt.Fprintf(w, "Duration:  %s\n", item.DurationText())
		if v := item.ViewsText(); v != "" {
			fmt.Fprintf(w, "Views:     %s\n", v)
		}
		for _, k := range []catalog.MediaKind{catalog.MediaVideo, catalog.MediaAudio} {
			formats := item.Formats(k)
			fmt.Fprintf(w, "%s formats:\n", titleCase(string(k)))
			if len(formats) == 0 {
				fmt.Fprintln(w, "  (none)")
				continue
			}
			for _, f := range formats {
				fmt.Fprintf(w, "  - %-24s %s\n", f.Label(), f.ContainerExt)
			}
		}
	case catalog.KindPlaylist:
		p, _ := c.Playlist()
		fmt.Fprintf(w, "Playlist:  %s\n", p.Title)
		fmt.Fprintf(w, "Videos:    %d\n", p.ItemCount)
		for i, it := range p.Preview(catalog.PreviewLimit) {
			fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, it.Title, it.DurationText())
		}
		if n := p.Remaining(catalog.PreviewLimit); n > 0 {
			fmt.Fprintf(w, "  ...and %d more\n", n)
		}
	}
	fmt.Fprintf(w, "Default:   %s, %s, %s\n", st.MediaKind, st.Quality, st.ContainerFormat)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
