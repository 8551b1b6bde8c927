package models

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&AllowedEmail{},
		&Settings{},
		&Customer{},
		&Product{},
		&Invoice{},
		&InvoiceItem{},
		&DeliveryNote{},
		&DeliveryNoteItem{},
	}
}

// Ownable is a record that belongs to a single user.
type Ownable interface {
	GetUserID() uint
}

// OwnedBy reports whether res belongs to userID. Records of other users
// are treated as missing by the handlers.
func OwnedBy(res Ownable, userID uint) bool {
	return res != nil && userID != 0 && res.GetUserID() == userID
}
