package notionsync

import (
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"pocketledger/internal/domain"
)

// TransactionProperties converts a transaction to the Notion page shape.
// categoryNames maps category id to display name; unresolvable ids fall
// back to the raw id so the page still carries the reference.
func TransactionProperties(tx domain.Transaction, categoryNames map[string]string) notionapi.Properties {
	title := tx.Note
	if title == "" {
		title = fmt.Sprintf("%s %.2f", tx.Type, tx.Amount)
	}

	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: title},
				},
			},
		},
		"Transaction ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: tx.ID},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount,
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.UnixMilli(tx.DateEpochMillis).UTC())
					return &d
				}(),
			},
		},
	}

	if tx.CategoryID != "" {
		name, ok := categoryNames[tx.CategoryID]
		if !ok {
			name = tx.CategoryID
		}
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: name},
		}
	}

	return props
}

// pageTransactionID reads the "Transaction ID" property off an existing
// page. Empty when the page was not created by this sync.
func pageTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties["Transaction ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
