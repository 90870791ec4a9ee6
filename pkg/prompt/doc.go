// Package prompt fills a form controller from an interactive terminal. A
// Session walks the schema section by section, asks for each enabled field
// through a Driver, rechecks the answer and then submits through a
// submit.Handler, asking again only for fields that were blocked or rejected.
package prompt
