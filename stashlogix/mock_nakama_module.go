package stashlogix

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockNakamaModule is a testify mock over runtime.NakamaModule. The surfaces the stash
// systems actually call (storage, notifications, wallet, file access) go through mock.Called
// so tests can set expectations or override them; the rest of the interface is stubbed with
// zero values purely to satisfy the contract.
type MockNakamaModule struct {
	mock.Mock
	*sql.DB
	logger *zap.Logger
}

// NewMockNakama returns a new instance of MockNakamaModule for use in tests.
func NewMockNakama(t *testing.T) *MockNakamaModule {
	logger, _ := zap.NewDevelopment()
	return &MockNakamaModule{
		logger: logger,
	}
}

func (m *MockNakamaModule) Log(msg string, fields ...zap.Field) {
	if m.logger != nil {
		m.logger.Info(msg, fields...)
	}
}

// Storage

func (m *MockNakamaModule) StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error) {
	args := m.Called(ctx, callerID, userID, collection, limit, cursor)
	return args.Get(0).([]*api.StorageObject), args.String(1), args.Error(2)
}

func (m *MockNakamaModule) StorageRead(ctx context.Context, objectIDs []*runtime.StorageRead) ([]*api.StorageObject, error) {
	args := m.Called(ctx, objectIDs)
	return args.Get(0).([]*api.StorageObject), args.Error(1)
}

func (m *MockNakamaModule) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	args := m.Called(ctx, writes)
	return args.Get(0).([]*api.StorageObjectAck), args.Error(1)
}

func (m *MockNakamaModule) StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error {
	args := m.Called(ctx, deletes)
	return args.Error(0)
}

func (m *MockNakamaModule) StorageIndexList(ctx context.Context, callerID, indexName, query string, limit int, order []string, cursor string) (*api.StorageObjects, string, error) {
	args := m.Called(ctx, callerID, indexName, query, limit, order, cursor)
	return args.Get(0).(*api.StorageObjects), args.String(1), args.Error(2)
}

func (m *MockNakamaModule) MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error) {
	args := m.Called(ctx, accountUpdates, storageWrites, storageDeletes, walletUpdates, updateLedger)
	return args.Get(0).([]*api.StorageObjectAck), args.Get(1).([]*runtime.WalletUpdateResult), args.Error(2)
}

// Notifications

func (m *MockNakamaModule) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	args := m.Called(ctx, userID, subject, content, code, sender, persistent)
	return args.Error(0)
}

func (m *MockNakamaModule) NotificationsSend(ctx context.Context, notifications []*runtime.NotificationSend) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNakamaModule) NotificationSendAll(ctx context.Context, subject string, content map[string]interface{}, code int, persistent bool) error {
	args := m.Called(ctx, subject, content, code, persistent)
	return args.Error(0)
}

func (m *MockNakamaModule) NotificationsDelete(ctx context.Context, notifications []*runtime.NotificationDelete) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNakamaModule) NotificationsDeleteId(ctx context.Context, userID string, ids []string) error {
	args := m.Called(ctx, userID, ids)
	return args.Error(0)
}

func (m *MockNakamaModule) NotificationsGetId(ctx context.Context, userID string, ids []string) ([]*runtime.Notification, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).([]*runtime.Notification), args.Error(1)
}

func (m *MockNakamaModule) NotificationsList(ctx context.Context, userID string, limit int, cursor string) ([]*api.Notification, string, error) {
	args := m.Called(ctx, userID, limit, cursor)
	return args.Get(0).([]*api.Notification), args.String(1), args.Error(2)
}

// Wallet

func (m *MockNakamaModule) WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (updated map[string]int64, previous map[string]int64, err error) {
	args := m.Called(ctx, userID, changeset, metadata, updateLedger)
	return args.Get(0).(map[string]int64), args.Get(1).(map[string]int64), args.Error(2)
}

func (m *MockNakamaModule) WalletsUpdate(ctx context.Context, updates []*runtime.WalletUpdate, updateLedger bool) ([]*runtime.WalletUpdateResult, error) {
	args := m.Called(ctx, updates, updateLedger)
	return args.Get(0).([]*runtime.WalletUpdateResult), args.Error(1)
}

func (m *MockNakamaModule) WalletLedgerUpdate(ctx context.Context, itemID string, metadata map[string]interface{}) (runtime.WalletLedgerItem, error) {
	args := m.Called(ctx, itemID, metadata)
	return args.Get(0).(runtime.WalletLedgerItem), args.Error(1)
}

func (m *MockNakamaModule) WalletLedgerList(ctx context.Context, userID string, limit int, cursor string) ([]runtime.WalletLedgerItem, string, error) {
	args := m.Called(ctx, userID, limit, cursor)
	return args.Get(0).([]runtime.WalletLedgerItem), args.String(1), args.Error(2)
}

// Accounts and users

func (m *MockNakamaModule) AccountGetId(ctx context.Context, userID string) (*api.Account, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*api.Account), args.Error(1)
}

func (m *MockNakamaModule) AccountsGetId(ctx context.Context, userIDs []string) ([]*api.Account, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).([]*api.Account), args.Error(1)
}

func (m *MockNakamaModule) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	args := m.Called(ctx, userID, username, metadata, displayName, timezone, location, langTag, avatarUrl)
	return args.Error(0)
}

func (m *MockNakamaModule) AccountDeleteId(ctx context.Context, userID string, recorded bool) error {
	args := m.Called(ctx, userID, recorded)
	return args.Error(0)
}

func (m *MockNakamaModule) AccountExportId(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockNakamaModule) UsersGetId(ctx context.Context, userIDs []string, facebookIDs []string) ([]*api.User, error) {
	args := m.Called(ctx, userIDs, facebookIDs)
	return args.Get(0).([]*api.User), args.Error(1)
}

func (m *MockNakamaModule) UsersGetUsername(ctx context.Context, usernames []string) ([]*api.User, error) {
	args := m.Called(ctx, usernames)
	return args.Get(0).([]*api.User), args.Error(1)
}

func (m *MockNakamaModule) UsersGetFriendStatus(ctx context.Context, userID string, userIDs []string) ([]*api.Friend, error) {
	args := m.Called(ctx, userID, userIDs)
	return args.Get(0).([]*api.Friend), args.Error(1)
}

func (m *MockNakamaModule) UsersGetRandom(ctx context.Context, count int) ([]*api.User, error) {
	args := m.Called(ctx, count)
	return args.Get(0).([]*api.User), args.Error(1)
}

func (m *MockNakamaModule) UsersBanId(ctx context.Context, userIDs []string) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

func (m *MockNakamaModule) UsersUnbanId(ctx context.Context, userIDs []string) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

// Runtime services

func (m *MockNakamaModule) ReadFile(path string) (*os.File, error) {
	args := m.Called(path)
	return args.Get(0).(*os.File), args.Error(1)
}

func (m *MockNakamaModule) CronPrev(expression string, timestamp int64) (int64, error) {
	args := m.Called(expression, timestamp)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNakamaModule) CronNext(expression string, timestamp int64) (int64, error) {
	args := m.Called(expression, timestamp)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNakamaModule) Event(ctx context.Context, evt *api.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockNakamaModule) MetricsCounterAdd(name string, tags map[string]string, delta int64) {}

func (m *MockNakamaModule) MetricsGaugeSet(name string, tags map[string]string, value float64) {}

func (m *MockNakamaModule) MetricsTimerRecord(name string, tags map[string]string, value time.Duration) {
}

func (m *MockNakamaModule) GetSatori() runtime.Satori {
	return nil
}

func (m *MockNakamaModule) GetFleetManager() runtime.FleetManager {
	return nil
}

// Authentication and linking, stubbed out. The stash systems never authenticate.

func (m *MockNakamaModule) AuthenticateApple(ctx context.Context, token, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateCustom(ctx context.Context, id, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateDevice(ctx context.Context, id, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateEmail(ctx context.Context, email, password, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateFacebook(ctx context.Context, token string, importFriends bool, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateFacebookInstantGame(ctx context.Context, signedPlayerInfo string, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateGameCenter(ctx context.Context, playerID, bundleID string, timestamp int64, salt, signature, publicKeyUrl, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateGoogle(ctx context.Context, token, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateSteam(ctx context.Context, token, username string, create bool) (string, string, bool, error) {
	return "", "", false, nil
}

func (m *MockNakamaModule) AuthenticateTokenGenerate(userID, username string, exp int64, vars map[string]string) (string, int64, error) {
	return "", 0, nil
}

func (m *MockNakamaModule) LinkApple(ctx context.Context, userID, token string) error { return nil }

func (m *MockNakamaModule) LinkCustom(ctx context.Context, userID, customID string) error {
	return nil
}

func (m *MockNakamaModule) LinkDevice(ctx context.Context, userID, deviceID string) error {
	return nil
}

func (m *MockNakamaModule) LinkEmail(ctx context.Context, userID, email, password string) error {
	return nil
}

func (m *MockNakamaModule) LinkFacebook(ctx context.Context, userID, username, token string, importFriends bool) error {
	return nil
}

func (m *MockNakamaModule) LinkFacebookInstantGame(ctx context.Context, userID, signedPlayerInfo string) error {
	return nil
}

func (m *MockNakamaModule) LinkGameCenter(ctx context.Context, userID, playerID, bundleID string, timestamp int64, salt, signature, publicKeyUrl string) error {
	return nil
}

func (m *MockNakamaModule) LinkGoogle(ctx context.Context, userID, token string) error { return nil }

func (m *MockNakamaModule) LinkSteam(ctx context.Context, userID, username, token string, importFriends bool) error {
	return nil
}

func (m *MockNakamaModule) UnlinkApple(ctx context.Context, userID, token string) error { return nil }

func (m *MockNakamaModule) UnlinkCustom(ctx context.Context, userID, customID string) error {
	return nil
}

func (m *MockNakamaModule) UnlinkDevice(ctx context.Context, userID, deviceID string) error {
	return nil
}

func (m *MockNakamaModule) UnlinkEmail(ctx context.Context, userID, email string) error { return nil }

func (m *MockNakamaModule) UnlinkFacebook(ctx context.Context, userID, token string) error {
	return nil
}

func (m *MockNakamaModule) UnlinkFacebookInstantGame(ctx context.Context, userID, signedPlayerInfo string) error {
	return nil
}

func (m *MockNakamaModule) UnlinkGameCenter(ctx context.Context, userID, playerID, bundleID string, timestamp int64, salt, signature, publicKeyUrl string) error {
	return nil
}

func (m *MockNakamaModule) UnlinkGoogle(ctx context.Context, userID, token string) error {
	return nil
}

func (m *MockNakamaModule) UnlinkSteam(ctx context.Context, userID, token string) error { return nil }

// Sessions and streams

func (m *MockNakamaModule) SessionDisconnect(ctx context.Context, sessionID string, reason ...runtime.PresenceReason) error {
	args := m.Called(ctx, sessionID, reason)
	return args.Error(0)
}

func (m *MockNakamaModule) SessionLogout(userID, token, refreshToken string) error {
	args := m.Called(userID, token, refreshToken)
	return args.Error(0)
}

func (m *MockNakamaModule) StreamUserList(mode uint8, subject, subcontext, label string, includeHidden, includeNotHidden bool) ([]runtime.Presence, error) {
	return nil, nil
}

func (m *MockNakamaModule) StreamUserGet(mode uint8, subject, subcontext, label, userID, sessionID string) (runtime.PresenceMeta, error) {
	return nil, nil
}

func (m *MockNakamaModule) StreamUserJoin(mode uint8, subject, subcontext, label, userID, sessionID string, hidden, persistence bool, status string) (bool, error) {
	return false, nil
}

func (m *MockNakamaModule) StreamUserUpdate(mode uint8, subject, subcontext, label, userID, sessionID string, hidden, persistence bool, status string) error {
	return nil
}

func (m *MockNakamaModule) StreamUserLeave(mode uint8, subject, subcontext, label, userID, sessionID string) error {
	return nil
}

func (m *MockNakamaModule) StreamUserKick(mode uint8, subject, subcontext, label string, presence runtime.Presence) error {
	return nil
}

func (m *MockNakamaModule) StreamCount(mode uint8, subject, subcontext, label string) (int, error) {
	return 0, nil
}

func (m *MockNakamaModule) StreamClose(mode uint8, subject, subcontext, label string) error {
	return nil
}

func (m *MockNakamaModule) StreamSend(mode uint8, subject, subcontext, label, data string, presences []runtime.Presence, reliable bool) error {
	return nil
}

func (m *MockNakamaModule) StreamSendRaw(mode uint8, subject, subcontext, label string, msg *rtapi.Envelope, presences []runtime.Presence, reliable bool) error {
	return nil
}

func (m *MockNakamaModule) StatusFollow(sessionID string, userIDs []string) error { return nil }

func (m *MockNakamaModule) StatusUnfollow(sessionID string, userIDs []string) error { return nil }

// Matches

func (m *MockNakamaModule) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	return "", nil
}

func (m *MockNakamaModule) MatchGet(ctx context.Context, id string) (*api.Match, error) {
	return nil, nil
}

func (m *MockNakamaModule) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	return nil, nil
}

func (m *MockNakamaModule) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	return "", nil
}

// Leaderboards and tournaments

func (m *MockNakamaModule) LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, enableRanks bool) error {
	return nil
}

func (m *MockNakamaModule) LeaderboardDelete(ctx context.Context, id string) error { return nil }

func (m *MockNakamaModule) LeaderboardList(limit int, cursor string) (*api.LeaderboardList, error) {
	return nil, nil
}

func (m *MockNakamaModule) LeaderboardRanksDisable(ctx context.Context, id string) error {
	return nil
}

func (m *MockNakamaModule) LeaderboardRecordsList(ctx context.Context, id string, ownerIDs []string, limit int, cursor string, expiry int64) (records []*api.LeaderboardRecord, ownerRecords []*api.LeaderboardRecord, nextCursor string, prevCursor string, err error) {
	return nil, nil, "", "", nil
}

func (m *MockNakamaModule) LeaderboardRecordsListCursorFromRank(id string, rank, overrideExpiry int64) (string, error) {
	return "", nil
}

func (m *MockNakamaModule) LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error) {
	return nil, nil
}

func (m *MockNakamaModule) LeaderboardRecordDelete(ctx context.Context, id, ownerID string) error {
	return nil
}

func (m *MockNakamaModule) LeaderboardsGetId(ctx context.Context, ids []string) ([]*api.Leaderboard, error) {
	return nil, nil
}

func (m *MockNakamaModule) LeaderboardRecordsHaystack(ctx context.Context, id, ownerID string, limit int, cursor string, expiry int64) (*api.LeaderboardRecordList, error) {
	return nil, nil
}

func (m *MockNakamaModule) TournamentCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, title, description string, category, startTime, endTime, duration, maxSize, maxNumScore int, joinRequired, enableRanks bool) error {
	return nil
}

func (m *MockNakamaModule) TournamentDelete(ctx context.Context, id string) error { return nil }

func (m *MockNakamaModule) TournamentAddAttempt(ctx context.Context, id, ownerID string, count int) error {
	return nil
}

func (m *MockNakamaModule) TournamentJoin(ctx context.Context, id, ownerID, username string) error {
	return nil
}

func (m *MockNakamaModule) TournamentsGetId(ctx context.Context, tournamentIDs []string) ([]*api.Tournament, error) {
	return nil, nil
}

func (m *MockNakamaModule) TournamentList(ctx context.Context, categoryStart, categoryEnd, startTime, endTime, limit int, cursor string) (*api.TournamentList, error) {
	return nil, nil
}

func (m *MockNakamaModule) TournamentRanksDisable(ctx context.Context, id string) error { return nil }

func (m *MockNakamaModule) TournamentRecordsList(ctx context.Context, tournamentId string, ownerIDs []string, limit int, cursor string, overrideExpiry int64) (records []*api.LeaderboardRecord, ownerRecords []*api.LeaderboardRecord, prevCursor string, nextCursor string, err error) {
	return nil, nil, "", "", nil
}

func (m *MockNakamaModule) TournamentRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, operatorOverride *int) (*api.LeaderboardRecord, error) {
	return nil, nil
}

func (m *MockNakamaModule) TournamentRecordDelete(ctx context.Context, id, ownerID string) error {
	return nil
}

func (m *MockNakamaModule) TournamentRecordsHaystack(ctx context.Context, id, ownerID string, limit int, cursor string, expiry int64) (*api.TournamentRecordList, error) {
	return nil, nil
}

func (m *MockNakamaModule) TournamentsGetCategory(categoryStart, categoryEnd, startTime, endTime, limit int, cursor string) (*api.TournamentList, error) {
	return nil, nil
}

func (m *MockNakamaModule) TournamentRecordListCursorFromRank(id string, rank, overrideExpiry int64) (string, error) {
	return "", nil
}

func (m *MockNakamaModule) TournamentRecordWriteOverride(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, operatorOverride *int) (*api.LeaderboardRecord, error) {
	return nil, nil
}

// Groups and friends

func (m *MockNakamaModule) GroupsGetId(ctx context.Context, groupIDs []string) ([]*api.Group, error) {
	return nil, nil
}

func (m *MockNakamaModule) GroupCreate(ctx context.Context, userID, name, creatorID, langTag, description, avatarUrl string, open bool, metadata map[string]interface{}, maxCount int) (*api.Group, error) {
	return nil, nil
}

func (m *MockNakamaModule) GroupUpdate(ctx context.Context, id, userID, name, creatorID, langTag, description, avatarUrl string, open bool, metadata map[string]interface{}, maxCount int) error {
	return nil
}

func (m *MockNakamaModule) GroupDelete(ctx context.Context, groupID string) error { return nil }

func (m *MockNakamaModule) GroupUserJoin(ctx context.Context, groupID, userID, username string) error {
	return nil
}

func (m *MockNakamaModule) GroupUserLeave(ctx context.Context, groupID, userID, username string) error {
	return nil
}

func (m *MockNakamaModule) GroupUsersAdd(ctx context.Context, callerID, groupID string, userIDs []string) error {
	return nil
}

func (m *MockNakamaModule) GroupUsersBan(ctx context.Context, callerID, groupID string, userIDs []string) error {
	return nil
}

func (m *MockNakamaModule) GroupUsersUnban(ctx context.Context, groupID string, userIDs []string) error {
	return nil
}

func (m *MockNakamaModule) GroupUsersKick(ctx context.Context, callerID, groupID string, userIDs []string) error {
	return nil
}

func (m *MockNakamaModule) GroupUsersPromote(ctx context.Context, callerID, groupID string, userIDs []string) error {
	return nil
}

func (m *MockNakamaModule) GroupUsersDemote(ctx context.Context, callerID, groupID string, userIDs []string) error {
	return nil
}

func (m *MockNakamaModule) GroupUsersList(ctx context.Context, id string, limit int, state *int, cursor string) ([]*api.GroupUserList_GroupUser, string, error) {
	return nil, "", nil
}

func (m *MockNakamaModule) GroupsList(ctx context.Context, name, langTag string, members *int, open *bool, limit int, cursor string) ([]*api.Group, string, error) {
	return nil, "", nil
}

func (m *MockNakamaModule) GroupsGetRandom(ctx context.Context, count int) ([]*api.Group, error) {
	return nil, nil
}

func (m *MockNakamaModule) UserGroupsList(ctx context.Context, userID string, limit int, state *int, cursor string) ([]*api.UserGroupList_UserGroup, string, error) {
	return nil, "", nil
}

func (m *MockNakamaModule) FriendMetadataUpdate(ctx context.Context, userID string, friendUserId string, metadata map[string]any) error {
	return nil
}

func (m *MockNakamaModule) FriendsList(ctx context.Context, userID string, limit int, state *int, cursor string) ([]*api.Friend, string, error) {
	return nil, "", nil
}

func (m *MockNakamaModule) FriendsOfFriendsList(ctx context.Context, userID string, limit int, cursor string) ([]*api.FriendsOfFriendsList_FriendOfFriend, string, error) {
	return nil, "", nil
}

func (m *MockNakamaModule) FriendsAdd(ctx context.Context, userID string, username string, ids []string, usernames []string) error {
	return nil
}

func (m *MockNakamaModule) FriendsDelete(ctx context.Context, userID string, username string, ids []string, usernames []string) error {
	return nil
}

func (m *MockNakamaModule) FriendsBlock(ctx context.Context, userID string, username string, ids []string, usernames []string) error {
	return nil
}

// Purchases and subscriptions

func (m *MockNakamaModule) PurchaseValidateApple(ctx context.Context, userID, receipt string, persist bool, passwordOverride ...string) (*api.ValidatePurchaseResponse, error) {
	return nil, nil
}

func (m *MockNakamaModule) PurchaseValidateGoogle(ctx context.Context, userID, receipt string, persist bool, overrides ...struct {
	ClientEmail string
	PrivateKey  string
}) (*api.ValidatePurchaseResponse, error) {
	return nil, nil
}

func (m *MockNakamaModule) PurchaseValidateHuawei(ctx context.Context, userID, signature, inAppPurchaseData string, persist bool) (*api.ValidatePurchaseResponse, error) {
	return nil, nil
}

func (m *MockNakamaModule) PurchaseValidateFacebookInstant(ctx context.Context, userID, signedRequest string, persist bool) (*api.ValidatePurchaseResponse, error) {
	return nil, nil
}

func (m *MockNakamaModule) PurchasesList(ctx context.Context, userID string, limit int, cursor string) (*api.PurchaseList, error) {
	return nil, nil
}

func (m *MockNakamaModule) PurchaseGetByTransactionId(ctx context.Context, transactionID string) (*api.ValidatedPurchase, error) {
	return nil, nil
}

func (m *MockNakamaModule) SubscriptionValidateApple(ctx context.Context, userID, receipt string, persist bool, passwordOverride ...string) (*api.ValidateSubscriptionResponse, error) {
	return nil, nil
}

func (m *MockNakamaModule) SubscriptionValidateGoogle(ctx context.Context, userID, receipt string, persist bool, overrides ...struct {
	ClientEmail string
	PrivateKey  string
}) (*api.ValidateSubscriptionResponse, error) {
	return nil, nil
}

func (m *MockNakamaModule) SubscriptionsList(ctx context.Context, userID string, limit int, cursor string) (*api.SubscriptionList, error) {
	return nil, nil
}

func (m *MockNakamaModule) SubscriptionGetByProductId(ctx context.Context, userID, productID string) (*api.ValidatedSubscription, error) {
	return nil, nil
}

// Channels

func (m *MockNakamaModule) ChannelIdBuild(ctx context.Context, sender string, target string, chanType runtime.ChannelType) (string, error) {
	return "", nil
}

func (m *MockNakamaModule) ChannelMessageSend(ctx context.Context, channelID string, content map[string]interface{}, senderId, senderUsername string, persist bool) (*rtapi.ChannelMessageAck, error) {
	return nil, nil
}

func (m *MockNakamaModule) ChannelMessageUpdate(ctx context.Context, channelID, messageID string, content map[string]interface{}, senderId, senderUsername string, persist bool) (*rtapi.ChannelMessageAck, error) {
	return nil, nil
}

func (m *MockNakamaModule) ChannelMessageRemove(ctx context.Context, channelId, messageId string, senderId, senderUsername string, persist bool) (*rtapi.ChannelMessageAck, error) {
	return nil, nil
}

func (m *MockNakamaModule) ChannelMessagesList(ctx context.Context, channelId string, limit int, forward bool, cursor string) (messages []*api.ChannelMessage, nextCursor string, prevCursor string, err error) {
	return nil, "", "", nil
}
