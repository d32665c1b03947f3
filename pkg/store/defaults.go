package store

import "strings"

// Seed message classes created with every mailbox.
const (
	ClassDefault = ""
	ClassIPM     = "IPM"
	ClassReport  = "REPORT.IPM"
	ClassIPC     = "IPC"
)

// DefaultReceiveFolders returns the rows seeded for a new mailbox.
func DefaultReceiveFolders(mbx *Mailbox) []ReceiveFolderRow {
	inbox := mbx.SpecialFolders[FolderInbox]
	return []ReceiveFolderRow{
		{MessageClass: ClassDefault, FolderID: inbox, LastModified: mbx.CreatedAt},
		{MessageClass: ClassIPM, FolderID: inbox, LastModified: mbx.CreatedAt},
		{MessageClass: ClassReport, FolderID: inbox, LastModified: mbx.CreatedAt},
		{MessageClass: ClassIPC, FolderID: mbx.SpecialFolders[FolderRoot], LastModified: mbx.CreatedAt},
	}
}

// FoldClass returns the case-insensitive key of a message class.
func FoldClass(class string) string {
	return strings.ToUpper(class)
}
