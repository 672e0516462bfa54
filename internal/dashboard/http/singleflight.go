package dashboardhttp

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/format"
)

// report collapses concurrent requests for the same locale into one build.
// The shared build is detached from the first caller's cancellation so a
// client hanging up does not fail everyone waiting on it.
func (h *Handler) report(ctx context.Context, locale format.Locale) (dashboard.Report, error) {
	resultChan := h.builds.DoChan(locale.Name, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requestTimeout)
		defer cancel()
		return h.service.Report(buildCtx, locale.Name)
	})
	select {
	case <-ctx.Done():
		return dashboard.Report{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return dashboard.Report{}, res.Err
		}
		report, ok := res.Val.(dashboard.Report)
		if !ok {
			return dashboard.Report{}, fmt.Errorf("dashboardhttp: unexpected build result %T", res.Val)
		}
		return report, nil
	}
}
