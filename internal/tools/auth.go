package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/solaris-forensic/casegraph/internal/auth"
)

// AuthTools holds references needed by the sign-in tool handlers.
type AuthTools struct {
	Auth *auth.Store
}

type SignUpInput struct {
	Email    string `json:"email" jsonschema:"Account email address"`
	Password string `json:"password" jsonschema:"Account password"`
	Username string `json:"username" jsonschema:"Display name"`
}

type SignInInput struct {
	Email    string `json:"email" jsonschema:"Account email address"`
	Password string `json:"password" jsonschema:"Account password"`
}

func (t *AuthTools) SignUp(_ context.Context, _ *mcp.CallToolRequest, input SignUpInput) (*mcp.CallToolResult, any, error) {
	if input.Email == "" || input.Password == "" || input.Username == "" {
		return toolError("Email, password and username are required"), nil, nil
	}
	user, err := t.Auth.SignUp(input.Email, input.Password, input.Username)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return toolError("User with this email already exists"), nil, nil
		}
		return toolError("Failed to create account: %v", err), nil, nil
	}
	return toolJSON(user)
}

func (t *AuthTools) SignIn(_ context.Context, _ *mcp.CallToolRequest, input SignInInput) (*mcp.CallToolResult, any, error) {
	user, err := t.Auth.SignIn(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return toolError("Invalid email or password"), nil, nil
		}
		return toolError("Failed to sign in: %v", err), nil, nil
	}
	return toolJSON(user)
}

func (t *AuthTools) SignOut(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	if err := t.Auth.SignOut(); err != nil {
		return toolError("Failed to sign out: %v", err), nil, nil
	}
	return toolText("Signed out."), nil, nil
}

func (t *AuthTools) WhoAmI(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	user, err := t.Auth.Current()
	if err != nil {
		return toolError("Failed to look up session: %v", err), nil, nil
	}
	if user == nil {
		return toolText("Not signed in."), nil, nil
	}
	return toolJSON(user)
}
