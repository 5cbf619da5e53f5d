package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

// termSize is a test seam for term.GetSize.
var termSize = term.GetSize

// shortAddr abbreviates a long hex address or object id as 0x1234…abcd.
func shortAddr(s string) string {
	if len(s) <= 14 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

func formatTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if width, _, err := termSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		t.SetAllowedRowLength(width)
	}
	return t
}

func renderPosts(w io.Writer, posts []*models.Post, caption string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "ID", "Title", "Author", "Created", "Tags", "Likes"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 40},
		{Name: "Tags", WidthMax: 24},
		{Name: "Likes", Align: text.AlignRight},
	})
	for i, p := range posts {
		t.AppendRow(table.Row{
			i + 1,
			shortAddr(p.ID),
			p.Title,
			shortAddr(p.Author),
			formatTime(p.CreatedAt),
			strings.Join(p.Tags, ", "),
			p.Likes,
		})
	}
	if len(posts) == 0 {
		t.AppendFooter(table.Row{"", "", "no posts"})
	}
	if caption != "" {
		t.SetCaption(caption)
	}
	t.Render()
}

func renderPost(w io.Writer, p *models.Post, body string) {
	fmt.Fprintf(w, "%s\n", text.Bold.Sprint(p.Title))
	fmt.Fprintf(w, "id: %s\nby %s on %s · %d likes\n", p.ID, p.Author, formatTime(p.CreatedAt), p.Likes)
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintf(w, "\n%s\n\n", body)

	if len(p.Assets) > 0 {
		t := newTable(w)
		t.SetTitle("Assets")
		t.AppendHeader(table.Row{"#", "Name", "Type", "Location"})
		for i, a := range p.Assets {
			t.AppendRow(table.Row{i + 1, a.Name, a.Type, a.Hash})
		}
		t.Render()
	}

	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Comments (%d)", len(p.Comments)))
	t.AppendHeader(table.Row{"Author", "When", "Comment"})
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Comment", WidthMax: 60}})
	for _, c := range p.Comments {
		t.AppendRow(table.Row{shortAddr(c.Author), formatTime(c.CreatedAt), c.Content})
	}
	t.Render()
}

func renderDraft(w io.Writer, d *models.Draft, attachments []*models.Attachment) {
	t := newTable(w)
	t.SetTitle("Draft")
	t.AppendRows([]table.Row{
		{"Title", d.Title},
		{"Tags", strings.Join(d.Tags, ", ")},
		{"Content", d.Content},
	})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 72}})
	for i, a := range attachments {
		t.AppendRow(table.Row{fmt.Sprintf("Attachment %d", i+1), fmt.Sprintf("%s (%s, %d bytes)", a.Name, a.MIME, len(a.Data))})
	}
	t.Render()
}

func renderAccounts(w io.Writer, accounts []models.Account, current string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Address", "Label", ""})
	for i, acc := range accounts {
		mark := ""
		if acc.Address == current {
			mark = "*"
		}
		t.AppendRow(table.Row{i + 1, acc.Address, acc.Label, mark})
	}
	t.Render()
}
