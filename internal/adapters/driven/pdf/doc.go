// Package pdf groups the PDF engines used by the extraction backends.
//
// Sub-packages:
//   - gopdf: in-process text-layer engine built on github.com/ledongthuc/pdf
//   - poppler: pdfinfo, pdftotext and pdftoppm driven through a CommandRunner
package pdf
