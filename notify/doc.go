// Package notify dispatches comparison reports by email through the
// Microsoft Graph sendMail endpoint.
package notify
