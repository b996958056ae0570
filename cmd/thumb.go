package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	thumbWidth  int
	thumbNoCopy bool
)

var thumbCmd = &cobra.Command{
	Use:   "thumb <file-url|name>",
	Short: "Resolve the thumbnail URL of a Commons file",
	Long: `Resolve the thumbnail URL of a Commons file and copy it to the clipboard.

Upload URLs are rewritten directly. Anything else is treated as a file name and
looked up once through the tracker's Mediawiki proxy.

Examples:
  tmedia thumb https://upload.wikimedia.org/wikipedia/commons/a/ab/Example.jpg
  tmedia thumb "File:Example.svg" --width 120`,
	Args: cobra.ExactArgs(1),
	RunE: runThumb,
}

func init() {
	thumbCmd.Flags().IntVarP(&thumbWidth, "width", "w", 0, "Thumbnail width in pixels (capped by thumb_width)")
	thumbCmd.Flags().BoolVar(&thumbNoCopy, "no-copy", false, "Do not copy the URL to the clipboard")
}

func runThumb(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	item := thumbTarget(args[0])
	item.Width = thumbWidth

	res := thumbnailService.Resolve(ctx, item)
	if !res.OK() {
		return fmt.Errorf("no thumbnail for %s: %w", args[0], res.Err)
	}

	fmt.Println(ui.FormatSuccess("Thumbnail:"))
	fmt.Println(ui.StyleBold.Render(res.URL))

	if thumbNoCopy {
		return nil
	}
	if err := clipboard.WriteAll(res.URL); err != nil {
		fmt.Println(ui.FormatMuted("(Clipboard access failed)"))
	} else {
		fmt.Println(ui.FormatMuted("(Copied to clipboard)"))
	}
	return nil
}

// thumbTarget turns a CLI argument into a resolvable item
func thumbTarget(arg string) domain.MediaItem {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return domain.MediaItem{URL: arg}
	}
	title := canonicalTitle(arg)
	return domain.MediaItem{
		CanonicalTitle: title,
		Name:           strings.TrimPrefix(title, "File:"),
	}
}
