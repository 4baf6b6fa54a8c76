package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
)

// ServiceName is the fully qualified gRPC service the client calls.
const ServiceName = "notesync.v1.NotesService"

const defaultCallTimeout = 15 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface
	timeout     time.Duration

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withAccessToken(ctx, s.AccessToken()), method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpointURL and authenticates every call with
// accessToken. Extra dial options are appended to the defaults.
func NewGRPCClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, timeout: defaultCallTimeout}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.cc = conn
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// AccessToken returns the token sent with every call.
func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the token used by subsequent calls.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// Identity is the identity the current access token belongs to.
func (s *GRPCClient) Identity() (string, error) {
	return IdentityFromToken(s.AccessToken())
}

func (s *GRPCClient) call(ctx context.Context, method string, in, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp := &structpb.Struct{}
	if err := s.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return s.mapError(err)
	}
	return fromStruct(resp, out)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.ErrUnavailable
	case codes.NotFound:
		return common.ErrNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// absent turns a not-found failure of a getter into a missing value.
func absent(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

func (s *GRPCClient) ListNotes(ctx context.Context) ([]models.Note, error) {
	var resp notesResponse
	if err := s.call(ctx, "ListNotes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (s *GRPCClient) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	var resp noteResponse
	if err := s.call(ctx, "GetNote", noteIDRequest{ID: id}, &resp); err != nil {
		return nil, absent(err)
	}
	return resp.Note, nil
}

func (s *GRPCClient) CreateNote(ctx context.Context, fields models.NoteFields) (models.NoteID, error) {
	var resp createNoteResponse
	if err := s.call(ctx, "CreateNote", noteRequest{Note: fields}, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (s *GRPCClient) UpdateNote(ctx context.Context, id models.NoteID, fields models.NoteFields) error {
	return s.call(ctx, "UpdateNote", noteRequest{ID: id, Note: fields}, nil)
}

func (s *GRPCClient) DeleteNote(ctx context.Context, id models.NoteID) error {
	return s.call(ctx, "DeleteNote", noteIDRequest{ID: id}, nil)
}

func (s *GRPCClient) ToggleStarPin(ctx context.Context, id models.NoteID, isStarred, isPinned bool) error {
	return s.call(ctx, "ToggleStarPin", starPinRequest{ID: id, IsStarred: isStarred, IsPinned: isPinned}, nil)
}

func (s *GRPCClient) LikeNote(ctx context.Context, id models.NoteID) error {
	return s.call(ctx, "LikeNote", noteIDRequest{ID: id}, nil)
}

func (s *GRPCClient) GetNoteLikers(ctx context.Context, id models.NoteID) ([]models.NoteLiker, error) {
	var resp likersResponse
	if err := s.call(ctx, "GetNoteLikers", noteIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return resp.Likers, nil
}

func (s *GRPCClient) GetCallerProfile(ctx context.Context) (*models.UserProfile, error) {
	var resp profileResponse
	if err := s.call(ctx, "GetCallerUserProfile", nil, &resp); err != nil {
		return nil, absent(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, identity string) (*models.UserProfile, error) {
	var resp profileResponse
	if err := s.call(ctx, "GetUserProfile", identityRequest{Identity: identity}, &resp); err != nil {
		return nil, absent(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) SaveCallerProfile(ctx context.Context, profile models.UserProfile) error {
	return s.call(ctx, "SaveCallerUserProfile", profileRequest{Profile: profile}, nil)
}

func (s *GRPCClient) ListUsers(ctx context.Context) ([]models.ExtendedUserProfile, error) {
	var resp usersResponse
	if err := s.call(ctx, "ListUsers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
