package search

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the e2e context these steps need.
type TestContext interface {
	SignInAs(uid string) error
	SetToken(token string)
	FromAddress(ip string)
	Search(params url.Values) error
	LastStatus() int
	LastHeader() http.Header
	LastJSON() (map[string]any, error)
}

// RegisterSteps registers search step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &searchSteps{tc: tc}

	ctx.Step(`^I am signed in as uid "([^"]*)"$`, tc.SignInAs)
	ctx.Step(`^I present the token "([^"]*)"$`, s.presentToken)
	ctx.Step(`^requests come from "([^"]*)"$`, s.requestsComeFrom)

	ctx.Step(`^I search for "([^"]*)"$`, s.searchFor)
	ctx.Step(`^I search for "([^"]*)" by "([^"]*)"$`, s.searchBy)
	ctx.Step(`^I search for "([^"]*)" with filter "([^"]*)"$`, s.searchWithFilter)
	ctx.Step(`^I search for "([^"]*)" sorted by "([^"]*)" "([^"]*)"$`, s.searchSorted)

	ctx.Step(`^the response status should be (\d+)$`, s.statusShouldBe)
	ctx.Step(`^the result uids should be "([^"]*)"$`, s.uidsShouldBe)
	ctx.Step(`^the first result uid should be "([^"]*)"$`, s.firstUIDShouldBe)
	ctx.Step(`^the match count should be (\d+)$`, s.matchCountShouldBe)
	ctx.Step(`^uid "([^"]*)" should be marked blocked$`, s.markedBlocked)
	ctx.Step(`^uid "([^"]*)" should be marked not blocked$`, s.markedNotBlocked)
	ctx.Step(`^the response should carry rate limit headers$`, s.rateLimitHeaders)
}

type searchSteps struct {
	tc TestContext
}

func (s *searchSteps) presentToken(token string) error {
	s.tc.SetToken(token)
	return nil
}

func (s *searchSteps) requestsComeFrom(ip string) error {
	s.tc.FromAddress(ip)
	return nil
}

func (s *searchSteps) searchFor(query string) error {
	return s.tc.Search(url.Values{"query": {query}})
}

func (s *searchSteps) searchBy(query, by string) error {
	return s.tc.Search(url.Values{"query": {query}, "searchBy": {by}})
}

func (s *searchSteps) searchWithFilter(query, filter string) error {
	return s.tc.Search(url.Values{"query": {query}, "filters": {filter}})
}

func (s *searchSteps) searchSorted(query, field, direction string) error {
	return s.tc.Search(url.Values{"query": {query}, "sortBy": {field}, "sortDirection": {direction}})
}

func (s *searchSteps) statusShouldBe(status int) error {
	if got := s.tc.LastStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d", status, got)
	}
	return nil
}

func (s *searchSteps) users() ([]map[string]any, error) {
	body, err := s.tc.LastJSON()
	if err != nil {
		return nil, err
	}
	raw, _ := body["users"].([]any)
	users := make([]map[string]any, 0, len(raw))
	for _, u := range raw {
		m, ok := u.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected user entry %v", u)
		}
		users = append(users, m)
	}
	return users, nil
}

func (s *searchSteps) uidsShouldBe(expected string) error {
	users, err := s.users()
	if err != nil {
		return err
	}
	got := make([]string, len(users))
	for i, u := range users {
		got[i] = fmt.Sprint(u["uid"])
	}
	if strings.Join(got, ",") != expected {
		return fmt.Errorf("expected uids %q, got %q", expected, strings.Join(got, ","))
	}
	return nil
}

func (s *searchSteps) firstUIDShouldBe(expected string) error {
	users, err := s.users()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return fmt.Errorf("expected uid %s first, got no users", expected)
	}
	if got := fmt.Sprint(users[0]["uid"]); got != expected {
		return fmt.Errorf("expected uid %s first, got %s", expected, got)
	}
	return nil
}

func (s *searchSteps) matchCountShouldBe(expected int) error {
	body, err := s.tc.LastJSON()
	if err != nil {
		return err
	}
	got, _ := body["matchCount"].(float64)
	if int(got) != expected {
		return fmt.Errorf("expected matchCount %d, got %v", expected, body["matchCount"])
	}
	return nil
}

func (s *searchSteps) blockedFlag(uid string) (any, error) {
	users, err := s.users()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if fmt.Sprint(u["uid"]) == uid {
			return u["isBlocked"], nil
		}
	}
	return nil, fmt.Errorf("uid %s not in results", uid)
}

func (s *searchSteps) markedBlocked(uid string) error {
	flag, err := s.blockedFlag(uid)
	if err != nil {
		return err
	}
	if flag != true {
		return fmt.Errorf("expected uid %s blocked, got isBlocked=%v", uid, flag)
	}
	return nil
}

func (s *searchSteps) markedNotBlocked(uid string) error {
	flag, err := s.blockedFlag(uid)
	if err != nil {
		return err
	}
	if flag != false {
		return fmt.Errorf("expected uid %s not blocked, got isBlocked=%v", uid, flag)
	}
	return nil
}

func (s *searchSteps) rateLimitHeaders() error {
	h := s.tc.LastHeader()
	for _, name := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if h.Get(name) == "" {
			return fmt.Errorf("missing %s header", name)
		}
	}
	return nil
}
