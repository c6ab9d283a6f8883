package report

import "errors"

var (
	ErrProjectScopeRequired = errors.New("project_id is required for supervisors")
	ErrExportFailed         = errors.New("failed to build export file")
)
