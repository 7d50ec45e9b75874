package e2e

import (
	"github.com/cucumber/godog"

	"usersearch/e2e/steps/search"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	search.RegisterSteps(ctx, tc)
}
