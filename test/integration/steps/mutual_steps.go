package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/usecase/auth"
	"github.com/streamshare/backend/internal/domain/entity"
	"github.com/streamshare/backend/internal/integration/adapters"
	"github.com/streamshare/backend/internal/integration/entrypoint/dto"
	"github.com/streamshare/backend/internal/integration/persistence"
	"github.com/streamshare/backend/internal/integration/persistence/model"
)

const adminKey = "admin"

func registerMutualSteps(ctx *godog.ScenarioContext) {
	// Setup
	ctx.Step(`^the following subscribers exist:$`, theFollowingSubscribersExist)
	ctx.Step(`^an administrator "([^"]*)" exists$`, anAdministratorExists)
	ctx.Step(`^I am logged in as the administrator$`, iAmLoggedInAsTheAdministrator)
	ctx.Step(`^I am logged in as subscriber "([^"]*)"$`, iAmLoggedInAsSubscriber)
	ctx.Step(`^a "([^"]*)" group exists for subscribers "([^"]*)"$`, aGroupExistsForSubscribers)

	// Actions
	ctx.Step(`^I create a "([^"]*)" group for subscribers "([^"]*)" with message "([^"]*)"$`, iCreateAGroupForSubscribers)
	ctx.Step(`^subscriber "([^"]*)" accepts the invite$`, subscriberAcceptsTheInvite)
	ctx.Step(`^subscriber "([^"]*)" declines the invite$`, subscriberDeclinesTheInvite)
	ctx.Step(`^subscriber "([^"]*)" responds to the invite of subscriber "([^"]*)" with accept "(true|false)"$`, subscriberRespondsToTheInviteOf)
	ctx.Step(`^I remember when subscriber "([^"]*)" responded$`, iRememberWhenSubscriberResponded)
	ctx.Step(`^I retire the current group$`, iRetireTheCurrentGroup)
	ctx.Step(`^the email queue is processed$`, theEmailQueueIsProcessed)

	// Assertions
	ctx.Step(`^the created group should have max members (\d+) and split price "([^"]*)"$`, theCreatedGroupShouldHave)
	ctx.Step(`^the current group should have (\d+) "([^"]*)" invitations$`, theCurrentGroupShouldHaveInvitations)
	ctx.Step(`^the current group should have status "([^"]*)"$`, theCurrentGroupShouldHaveStatus)
	ctx.Step(`^subscriber "([^"]*)" should have (\d+) pending notifications$`, subscriberShouldHavePendingNotifications)
	ctx.Step(`^subscriber "([^"]*)" should have no active connection$`, subscriberShouldHaveNoActiveConnection)
	ctx.Step(`^subscriber "([^"]*)" should have a connection to a "([^"]*)" group$`, subscriberShouldHaveAConnectionToAGroup)
	ctx.Step(`^subscriber "([^"]*)" should have an active connection with split price "([^"]*)" and (\d+) members$`, subscriberShouldHaveAnActiveConnection)
	ctx.Step(`^the invite of subscriber "([^"]*)" should be "([^"]*)"$`, theInviteOfSubscriberShouldBe)
	ctx.Step(`^the response time of subscriber "([^"]*)" should be unchanged$`, theResponseTimeShouldBeUnchanged)
	ctx.Step(`^no mutual groups should exist$`, noMutualGroupsShouldExist)
	ctx.Step(`^(\d+) invitation emails should have been delivered$`, invitationEmailsShouldHaveBeenDelivered)
	ctx.Step(`^subscriber "([^"]*)" should have received an email with subject "([^"]*)"$`, subscriberShouldHaveReceivedAnEmail)
}

func theFollowingSubscribersExist(ctx context.Context, table *godog.Table) error {
	tc := GetTestContext(ctx)
	passwords := adapters.NewPasswordService(tc.cfg.JWT.BcryptCost)
	users := persistence.NewUserRepository(tc.db.DbConn)

	hash, err := passwords.HashPassword(testPassword)
	if err != nil {
		return err
	}

	header := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}
	for _, row := range table.Rows[1:] {
		value := func(column string) string { return row.Cells[header[column]].Value }

		user := entity.NewUser(value("name"), value("email"), hash, value("country"))
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to seed %s: %w", value("name"), err)
		}
		tc.subscribers[value("key")] = subscriber{id: user.ID, email: user.Email}
	}
	return nil
}

func anAdministratorExists(ctx context.Context, email string) error {
	tc := GetTestContext(ctx)
	admin, err := tc.injector.EnsureAdmin.Execute(ctx, auth.EnsureAdminInput{
		Email:    email,
		Password: testAdminPassword,
	})
	if err != nil {
		return err
	}
	tc.adminEmail = admin.Email
	return nil
}

// login returns a cached token for key, logging in through the API on first use.
func (tc *TestContext) login(key string) (string, error) {
	if token, ok := tc.tokens[key]; ok {
		return token, nil
	}

	email, password := tc.adminEmail, testAdminPassword
	if key != adminKey {
		sub, ok := tc.subscribers[key]
		if !ok {
			return "", fmt.Errorf("unknown subscriber %q", key)
		}
		email, password = sub.email, testPassword
	}

	var out dto.AuthResponse
	if err := tc.callJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	tc.tokens[key] = out.AccessToken
	return out.AccessToken, nil
}

func iAmLoggedInAsTheAdministrator(ctx context.Context) error {
	tc := GetTestContext(ctx)
	token, err := tc.login(adminKey)
	tc.accessToken = token
	return err
}

func iAmLoggedInAsSubscriber(ctx context.Context, key string) error {
	tc := GetTestContext(ctx)
	token, err := tc.login(key)
	tc.accessToken = token
	return err
}

func (tc *TestContext) userIDs(keys string) ([]string, error) {
	var ids []string
	for _, key := range strings.Split(keys, ",") {
		sub, ok := tc.subscribers[strings.TrimSpace(key)]
		if !ok {
			return nil, fmt.Errorf("unknown subscriber %q", key)
		}
		ids = append(ids, sub.id.String())
	}
	return ids, nil
}

func iCreateAGroupForSubscribers(ctx context.Context, plan, keys, message string) error {
	tc := GetTestContext(ctx)
	ids, err := tc.userIDs(keys)
	if err != nil {
		return err
	}

	err = tc.send(http.MethodPost, "/api/v1/admin/mutual/groups", dto.CreateMutualGroupRequest{
		UserIDs:      ids,
		PlanName:     plan,
		AdminMessage: message,
	})
	if err != nil {
		return err
	}

	if tc.response.StatusCode == http.StatusCreated {
		var out dto.CreateMutualGroupResponse
		if err := json.Unmarshal(tc.responseBody, &out); err != nil {
			return err
		}
		tc.groupID = uuid.MustParse(out.Group.ID)
	}
	return nil
}

func aGroupExistsForSubscribers(ctx context.Context, plan, keys string) error {
	tc := GetTestContext(ctx)
	if err := iAmLoggedInAsTheAdministrator(ctx); err != nil {
		return err
	}
	if err := iCreateAGroupForSubscribers(ctx, plan, keys, "Let's share "+plan); err != nil {
		return err
	}
	if tc.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("group creation failed with %d: %s", tc.response.StatusCode, string(tc.responseBody))
	}
	tc.accessToken = ""
	return nil
}

// inviteOf finds the subscriber's invitation for the current group through their own feed.
func (tc *TestContext) inviteOf(key string) (*dto.MutualInviteResponse, error) {
	token, err := tc.login(key)
	if err != nil {
		return nil, err
	}

	var feed dto.MutualInviteListResponse
	if err := tc.callJSON(http.MethodGet, "/api/v1/mutual/invites", token, nil, &feed); err != nil {
		return nil, err
	}
	for i := range feed.Invites {
		if feed.Invites[i].GroupID == tc.groupID.String() {
			return &feed.Invites[i], nil
		}
	}
	return nil, fmt.Errorf("subscriber %q has no invite for group %s", key, tc.groupID)
}

func (tc *TestContext) respondAs(responder, owner string, accept bool) error {
	invite, err := tc.inviteOf(owner)
	if err != nil {
		return err
	}
	token, err := tc.login(responder)
	if err != nil {
		return err
	}

	status, body, err := tc.call(http.MethodPost, "/api/v1/mutual/invites/"+invite.ID+"/respond", token,
		map[string]bool{"accept": accept})
	if err != nil {
		return err
	}
	tc.response = &http.Response{StatusCode: status}
	tc.responseBody = body
	return nil
}

func subscriberAcceptsTheInvite(ctx context.Context, key string) error {
	return GetTestContext(ctx).respondAs(key, key, true)
}

func subscriberDeclinesTheInvite(ctx context.Context, key string) error {
	return GetTestContext(ctx).respondAs(key, key, false)
}

func subscriberRespondsToTheInviteOf(ctx context.Context, responder, owner, accept string) error {
	return GetTestContext(ctx).respondAs(responder, owner, accept == "true")
}

func iRememberWhenSubscriberResponded(ctx context.Context, key string) error {
	tc := GetTestContext(ctx)
	invite, err := tc.inviteOf(key)
	if err != nil {
		return err
	}
	if invite.RespondedAt == nil {
		return fmt.Errorf("subscriber %q has not responded yet", key)
	}
	tc.respondedAt[key] = invite.RespondedAt.String()
	return nil
}

func iRetireTheCurrentGroup(ctx context.Context) error {
	tc := GetTestContext(ctx)
	return tc.send(http.MethodPost, "/api/v1/admin/mutual/groups/"+tc.groupID.String()+"/retire", nil)
}

func theEmailQueueIsProcessed(ctx context.Context) error {
	GetTestContext(ctx).injector.EmailWorker.ProcessNow(ctx)
	return nil
}

func theCreatedGroupShouldHave(ctx context.Context, maxMembers int, splitPrice string) error {
	tc := GetTestContext(ctx)
	var out dto.CreateMutualGroupResponse
	if err := json.Unmarshal(tc.responseBody, &out); err != nil {
		return err
	}
	if out.Group.MaxMembers != maxMembers {
		return fmt.Errorf("expected max members %d, got %d", maxMembers, out.Group.MaxMembers)
	}
	if out.Group.SplitPrice != splitPrice {
		return fmt.Errorf("expected split price %s, got %s", splitPrice, out.Group.SplitPrice)
	}
	if out.Group.Status != string(entity.MutualGroupStatusForming) {
		return fmt.Errorf("expected a FORMING group, got %s", out.Group.Status)
	}
	return nil
}

func (tc *TestContext) currentGroupMembers() (*dto.GroupMembersResponse, error) {
	token, err := tc.login(adminKey)
	if err != nil {
		return nil, err
	}
	var out dto.GroupMembersResponse
	err = tc.callJSON(http.MethodGet, "/api/v1/admin/mutual/groups/"+tc.groupID.String()+"/members", token, nil, &out)
	return &out, err
}

func theCurrentGroupShouldHaveInvitations(ctx context.Context, count int, status string) error {
	tc := GetTestContext(ctx)
	out, err := tc.currentGroupMembers()
	if err != nil {
		return err
	}

	matching := 0
	for _, member := range out.Members {
		if member.InviteStatus == status {
			matching++
		}
	}
	if matching != count || len(out.Members) != count {
		return fmt.Errorf("expected %d %s invitations, got %d of %d", count, status, matching, len(out.Members))
	}
	return nil
}

func theCurrentGroupShouldHaveStatus(ctx context.Context, status string) error {
	tc := GetTestContext(ctx)
	out, err := tc.currentGroupMembers()
	if err != nil {
		return err
	}
	if out.Group.Status != status {
		return fmt.Errorf("expected group status %s, got %s", status, out.Group.Status)
	}
	return nil
}

func subscriberShouldHavePendingNotifications(ctx context.Context, key string, count int) error {
	tc := GetTestContext(ctx)
	token, err := tc.login(key)
	if err != nil {
		return err
	}
	var out dto.NotificationCountResponse
	if err := tc.callJSON(http.MethodGet, "/api/v1/mutual/notifications/count", token, nil, &out); err != nil {
		return err
	}
	if out.Count != count {
		return fmt.Errorf("expected %d pending notifications, got %d", count, out.Count)
	}
	return nil
}

func (tc *TestContext) connectionOf(key string) (*dto.ActiveConnectionResponse, error) {
	token, err := tc.login(key)
	if err != nil {
		return nil, err
	}
	var out dto.ActiveConnectionResponse
	err = tc.callJSON(http.MethodGet, "/api/v1/mutual/connection", token, nil, &out)
	return &out, err
}

func subscriberShouldHaveNoActiveConnection(ctx context.Context, key string) error {
	out, err := GetTestContext(ctx).connectionOf(key)
	if err != nil {
		return err
	}
	if out.Connected {
		return fmt.Errorf("subscriber %q unexpectedly has a connection to %s", key, out.Group.ID)
	}
	return nil
}

func subscriberShouldHaveAConnectionToAGroup(ctx context.Context, key, status string) error {
	out, err := GetTestContext(ctx).connectionOf(key)
	if err != nil {
		return err
	}
	if !out.Connected || out.Group == nil {
		return fmt.Errorf("subscriber %q has no connection", key)
	}
	if out.Group.Status != status {
		return fmt.Errorf("expected a %s group, got %s", status, out.Group.Status)
	}
	return nil
}

func subscriberShouldHaveAnActiveConnection(ctx context.Context, key, splitPrice string, members int) error {
	tc := GetTestContext(ctx)
	out, err := tc.connectionOf(key)
	if err != nil {
		return err
	}
	if !out.Connected || out.Group == nil {
		return fmt.Errorf("subscriber %q has no connection", key)
	}
	if out.Group.ID != tc.groupID.String() {
		return fmt.Errorf("expected connection to %s, got %s", tc.groupID, out.Group.ID)
	}
	if out.Group.Status != string(entity.MutualGroupStatusActive) {
		return fmt.Errorf("expected an ACTIVE group, got %s", out.Group.Status)
	}
	if out.Group.SplitPrice != splitPrice {
		return fmt.Errorf("expected split price %s, got %s", splitPrice, out.Group.SplitPrice)
	}
	if len(out.Members) != members {
		return fmt.Errorf("expected %d members, got %d", members, len(out.Members))
	}
	return nil
}

func theInviteOfSubscriberShouldBe(ctx context.Context, key, status string) error {
	invite, err := GetTestContext(ctx).inviteOf(key)
	if err != nil {
		return err
	}
	if invite.InviteStatus != status {
		return fmt.Errorf("expected invite status %s, got %s", status, invite.InviteStatus)
	}
	return nil
}

func theResponseTimeShouldBeUnchanged(ctx context.Context, key string) error {
	tc := GetTestContext(ctx)
	invite, err := tc.inviteOf(key)
	if err != nil {
		return err
	}
	if invite.RespondedAt == nil || invite.RespondedAt.String() != tc.respondedAt[key] {
		return fmt.Errorf("responded_at changed from %s to %v", tc.respondedAt[key], invite.RespondedAt)
	}
	return nil
}

func noMutualGroupsShouldExist(ctx context.Context) error {
	tc := GetTestContext(ctx)
	for _, m := range []any{&model.MutualGroupModel{}, &model.MutualInviteModel{}} {
		count, err := tc.db.Count(m)
		if err != nil {
			return err
		}
		if count != 0 {
			return fmt.Errorf("expected no rows for %T, found %d", m, count)
		}
	}
	return nil
}

func invitationEmailsShouldHaveBeenDelivered(ctx context.Context, count int) error {
	tc := GetTestContext(ctx)
	received := tc.resend.Received()
	if len(received) != count {
		return fmt.Errorf("expected %d emails, got %d", count, len(received))
	}
	if header := tc.resend.GetRequestHeaders(0).Get("Authorization"); header != "Bearer "+tc.cfg.Email.ResendAPIKey {
		return fmt.Errorf("unexpected authorization header %q", header)
	}
	return nil
}

func subscriberShouldHaveReceivedAnEmail(ctx context.Context, key, subject string) error {
	tc := GetTestContext(ctx)
	sub, ok := tc.subscribers[key]
	if !ok {
		return fmt.Errorf("unknown subscriber %q", key)
	}
	for _, body := range tc.resend.ReceivedFor(sub.email) {
		if body["subject"] == subject {
			return nil
		}
	}
	return fmt.Errorf("no email with subject %q was sent to %s", subject, sub.email)
}
