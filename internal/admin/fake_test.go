// AngelaMos | 2026
// fake_test.go

package admin

import "context"

type FakeAuthService struct {
	InvalidateAllSessionsFunc func(ctx context.Context) error
}

func NewFakeAuthService() *FakeAuthService {
	return &FakeAuthService{}
}

func (f *FakeAuthService) InvalidateAllSessions(ctx context.Context) error {
	if f.InvalidateAllSessionsFunc != nil {
		return f.InvalidateAllSessionsFunc(ctx)
	}
	return nil
}

// FakeCounters serves both counter interfaces so one fake covers the
// platform stats endpoint.
type FakeCounters struct {
	CountUsersByRoleFunc       func(ctx context.Context) (map[string]int64, error)
	CountSchedulesByStatusFunc func(ctx context.Context) (map[string]int64, error)
}

func NewFakeCounters() *FakeCounters {
	return &FakeCounters{}
}

func (f *FakeCounters) CountUsersByRole(
	ctx context.Context,
) (map[string]int64, error) {
	if f.CountUsersByRoleFunc != nil {
		return f.CountUsersByRoleFunc(ctx)
	}
	return map[string]int64{}, nil
}

func (f *FakeCounters) CountSchedulesByStatus(
	ctx context.Context,
) (map[string]int64, error) {
	if f.CountSchedulesByStatusFunc != nil {
		return f.CountSchedulesByStatusFunc(ctx)
	}
	return map[string]int64{}, nil
}

var (
	_ AuthService     = (*FakeAuthService)(nil)
	_ UserCounter     = (*FakeCounters)(nil)
	_ ScheduleCounter = (*FakeCounters)(nil)
)
