package settings

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/contest/srvcerror"
)

const ErrCodeInvalidQuota = "invalid_quota"

func newErrInvalidQuota(max int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidQuota,
		fmt.Sprintf("submission quota must be at least 1, got %d", max),
	).SetHttpStatusCode(http.StatusBadRequest)
}

func newErrStorage(format string, err error) *srvcerror.Error {
	return srvcerror.ErrStorageUnavailable(fmt.Errorf(format, err))
}
