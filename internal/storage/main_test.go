package storage

import (
	"os"
	"testing"

	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("fatal")
	os.Exit(m.Run())
}
