package firebase

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Clients bundles the Firebase handles the app depends on.
type Clients struct {
	App       *firebase.App
	Auth      *fbauth.Client
	Firestore *firestore.Client
}

// New initializes the Firebase app plus the Auth and Firestore clients.
// credentialsFile may be empty when ambient credentials are available
// (e.g. GOOGLE_APPLICATION_CREDENTIALS); projectID is required.
func New(ctx context.Context, credentialsFile, projectID string) (*Clients, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("firebase project ID is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	return &Clients{App: app, Auth: authClient, Firestore: fsClient}, nil
}

// Close releases the underlying Firestore connection.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
