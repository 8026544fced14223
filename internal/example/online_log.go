package example

import (
	"time"

	"github.com/roach88/tabledao/internal/registry"
)

// OnlineLogTable is the table OnlineLogHandler serves.
const OnlineLogTable = "online_log"

// OnlineLog is one row of the online_log table.
type OnlineLog struct {
	RecordID  *int64     `db:"record_id"`
	EnvID     *string    `db:"env_id"`
	EnvTimeIn *time.Time `db:"env_timein"`
	SafPlanID *string    `db:"saf_plan_id"`
	TxnSource *string    `db:"txn_source"`
}

// OnlineLogHandler maps OnlineLog records to the online_log table.
type OnlineLogHandler struct{}

// TableName implements dao.Handler.
func (OnlineLogHandler) TableName() string { return OnlineLogTable }

// IDColumn implements dao.Handler.
func (OnlineLogHandler) IDColumn() string { return "record_id" }

func init() {
	registry.Register[OnlineLog](OnlineLogHandler{})
}
