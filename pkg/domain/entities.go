package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
	// Seq breaks ties between records sharing CreatedAt.
	Seq int64 `bun:",notnull,default:0" json:"-"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// EnsureSeq assigns the creation sequence when the struct is about to be
// persisted.
func (m *RecordMeta) EnsureSeq() {
	if m.Seq == 0 {
		m.Seq = NextSeq()
	}
}

var lastSeq atomic.Int64

// NextSeq returns a strictly increasing value that follows the wall clock in
// nanoseconds.
func NextSeq() int64 {
	for {
		last := lastSeq.Load()
		next := time.Now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

// StringList stores []string as JSON.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	return json.Marshal([]string(s))
}

func (s *StringList) Scan(value any) error {
	if s == nil {
		return errors.New("StringList: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return fmt.Errorf("StringList: unsupported type %T", value)
	}
}

// User is the identity that acts on content and owns personal groups.
type User struct {
	bun.BaseModel `bun:"table:users"`
	RecordMeta

	Username string `bun:",unique,notnull" json:"username"`
	Nickname string `bun:",nullzero" json:"nickname,omitempty"`
}

// DisplayName prefers the nickname and falls back to the username.
func (u User) DisplayName() string {
	if nick := strings.TrimSpace(u.Nickname); nick != "" {
		return nick
	}
	return u.Username
}

// Status codes shared by articles and questions.
const (
	ArticleDraft     = "D"
	ArticlePublished = "P"

	QuestionOpen   = "O"
	QuestionClosed = "C"
	QuestionDraft  = "D"
)
