package cmd

import (
	"fmt"
	"html/template"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	galleryTicket   string
	galleryMode     string
	galleryLimit    int
	galleryCategory string
	galleryNoOpen   bool
)

var galleryCmd = &cobra.Command{
	Use:   "gallery [term]",
	Short: "Render search results and attachments as an HTML gallery",
	Long: `Search Commons and write an HTML page with thumbnails of the new results
and of the media already attached to the ticket, then open it in the browser.

Each card carries a checkbox named after the file's canonical title and a link
to its description page.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGallery,
}

func init() {
	galleryCmd.Flags().StringVarP(&galleryTicket, "ticket", "t", "", "Ticket id (required)")
	addSearchFlags(galleryCmd, &galleryMode, &galleryLimit, &galleryCategory)
	galleryCmd.Flags().BoolVar(&galleryNoOpen, "no-open", false, "Write the file without opening it")
	galleryCmd.MarkFlagRequired("ticket")
}

type galleryPage struct {
	Title    string
	Ticket   string
	New      []services.Card
	Existing []services.Card
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>
	body { font-family: sans-serif; background: #1a1b26; color: #a9b1d6; padding: 20px; }
	.grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 20px; }
	.card { background: #24283b; border-radius: 8px; padding: 10px; }
	.card img { width: 100%; height: 150px; object-fit: contain; background: #000; }
	.title { color: #7aa2f7; font-weight: bold; display: block; margin-top: 5px; word-break: break-all; }
	.desc { font-size: 0.9em; margin-top: 5px; display: block; }
	a { color: #bb9af7; }
</style></head><body>
<h1>{{.Title}}</h1>
<h2>New results</h2>
<div class="grid">{{range .New}}
	<div class="card">
		<a href="{{.Item.DescriptionURL}}" target="_blank"><img src="{{.ThumbURL}}" loading="lazy"></a>
		<label class="title"><input type="checkbox" name="{{.Item.Key}}"> {{.Item.Title}}</label>
		<a class="desc" href="{{.Item.DescriptionURL}}" target="_blank">Description</a>
	</div>{{else}}<p>No new results.</p>{{end}}
</div>
<h2>Attached to ticket {{.Ticket}}</h2>
<div class="grid">{{range .Existing}}
	<div class="card">
		<img src="{{.ThumbURL}}" loading="lazy">
		<label class="title"><input type="checkbox" name="{{.APIURL}}"> {{.Item.Title}}</label>
		{{if .Item.DescriptionURL}}<a class="desc" href="{{.Item.DescriptionURL}}" target="_blank">Description</a>{{end}}
	</div>{{else}}<p>Nothing attached yet.</p>{{end}}
</div>
</body></html>
`))

func runGallery(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	q, err := buildQuery(ctx, galleryMode, args, galleryLimit, galleryCategory)
	if err != nil {
		return err
	}

	browse := newBrowseService(newCLINotifier(false))
	if _, err := browse.LoadTicket(ctx, galleryTicket); err != nil {
		return err
	}
	results, err := browse.Search(ctx, q)
	if err != nil {
		return err
	}

	page := galleryPage{
		Title:    fmt.Sprintf("%s: %s", q.Mode.Label(), q.Term),
		Ticket:   galleryTicket,
		New:      browse.Cards(ctx, results.Items),
		Existing: browse.ExistingCards(ctx),
	}

	if err := appDirs.Initialize(); err != nil {
		return err
	}
	path := appDirs.GalleryFile(galleryTicket, q.Term)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create gallery: %w", err)
	}
	if err := galleryTemplate.Execute(f, page); err != nil {
		f.Close()
		return fmt.Errorf("failed to render gallery: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Gallery written: %d new, %d attached", len(page.New), len(page.Existing))))
	fmt.Println(ui.RenderKeyValue("File", path))

	if galleryNoOpen || !appConfig.OpenBrowser {
		return nil
	}
	fmt.Println(ui.FormatRocket("Opening gallery..."))
	return OpenFile(path)
}
