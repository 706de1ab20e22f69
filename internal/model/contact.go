package model

// Contact represents a stored contact. The id is assigned by the database on
// insert and immutable afterwards. tel_number is the join key for inbound SMS
// matching and carries a unique index so concurrent resolution of the same
// sender cannot create two rows.
type Contact struct {
	ID        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Firstname string `json:"firstname" gorm:"column:firstname;type:text;not null" validate:"required"`
	Lastname  string `json:"lastname" gorm:"column:lastname;type:text"`
	Email     string `json:"email" gorm:"column:email;type:text" validate:"omitempty,email"`
	Address   string `json:"address" gorm:"column:address;type:text"`
	TelNumber string `json:"telNumber" gorm:"column:tel_number;type:text;not null;uniqueIndex" validate:"required"`
	Picture   string `json:"picture,omitempty" gorm:"column:picture;type:text"` // base64-encoded PNG, empty if unset
}

// TableName specifies the table name for the Contact model.
func (Contact) TableName() string {
	return "contacts"
}

// NewPlaceholderContact builds the minimal contact synthesized for an unknown
// sender: the phone number stands in for the first name until the user edits it.
func NewPlaceholderContact(number string) Contact {
	return Contact{
		Firstname: number,
		TelNumber: number,
	}
}
