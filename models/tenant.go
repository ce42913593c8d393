package models

// TenantOwned is implemented by every record that belongs to a firm. The
// scoped store stamps the firm on create and checks it on every load.
type TenantOwned interface {
	TableName() string
	RecordID() string
	TenantID() string
	AssignTenant(firmID string)
}

func (c *Client) RecordID() string           { return c.ID }
func (c *Client) TenantID() string           { return c.FirmID }
func (c *Client) AssignTenant(firmID string) { c.FirmID = firmID }

func (c *Case) RecordID() string           { return c.ID }
func (c *Case) TenantID() string           { return c.FirmID }
func (c *Case) AssignTenant(firmID string) { c.FirmID = firmID }

func (t *TimeEntry) RecordID() string           { return t.ID }
func (t *TimeEntry) TenantID() string           { return t.FirmID }
func (t *TimeEntry) AssignTenant(firmID string) { t.FirmID = firmID }

func (e *CalendarEvent) RecordID() string           { return e.ID }
func (e *CalendarEvent) TenantID() string           { return e.FirmID }
func (e *CalendarEvent) AssignTenant(firmID string) { e.FirmID = firmID }

func (d *Document) RecordID() string           { return d.ID }
func (d *Document) TenantID() string           { return d.FirmID }
func (d *Document) AssignTenant(firmID string) { d.FirmID = firmID }

func (i *Invoice) RecordID() string { return i.ID }
func (i *Invoice) TenantID() string { return i.FirmID }

// AssignTenant stamps the invoice and each of its lines
func (i *Invoice) AssignTenant(firmID string) {
	i.FirmID = firmID
	for idx := range i.LineItems {
		i.LineItems[idx].FirmID = firmID
	}
}

func (l *InvoiceLineItem) RecordID() string           { return l.ID }
func (l *InvoiceLineItem) TenantID() string           { return l.FirmID }
func (l *InvoiceLineItem) AssignTenant(firmID string) { l.FirmID = firmID }

func (a *AuditLog) RecordID() string           { return a.ID }
func (a *AuditLog) TenantID() string           { return a.FirmID }
func (a *AuditLog) AssignTenant(firmID string) { a.FirmID = firmID }
