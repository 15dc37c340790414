package dashboard

import (
	"context"
	"net/http"

	"github.com/MarcGrol/agencyportal/services/social"
)

//go:generate mockgen -source=api.go -package dashboard -destination user_info_fetcher_mock.go UserInfoFetcher
type UserInfoFetcher interface {
	FetchUserInfo(c context.Context, w http.ResponseWriter, r *http.Request) social.UserInfoResult
}
