// Package printing turns pick lists and purchase orders into printable
// documents.
//
// This package contains:
//   - TemplateEngine, which renders the embedded html/template documents
//   - PDFRenderer and its chromedp implementation for HTML to PDF
//   - DocumentService, which renders a document as HTML or PDF and can keep
//     the PDF in object storage behind a presigned link
//
// Example usage:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: 30 * time.Second})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	docs := NewDocumentService(NewTemplateEngine(), renderer, store, DocumentConfig{CompanyName: "DoorSets"}, logger)
//	out, err := docs.Print(ctx, PickListDocument(view), PrintOptions{Format: FormatPDF})
package printing
