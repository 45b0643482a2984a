package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/categories"
)

const sampleConfig = `# custompost configuration. Every key can be overridden with a
# CUSTOMPOST_* environment variable, e.g. CUSTOMPOST_SERVER_PORT=9090.
database:
  driver: postgres            # postgres or sqlite
  url: ""                     # falls back to DATABASE_URL

server:
  port: "8080"
  shutdown_timeout: 10s

storage:
  root: public                # uploads land in <root>/uploads/<table>/<column>/
  max_upload_mb: 32

provisioning:
  prefix: customtable_
  strict: false               # reject requests with unusable field descriptors

auth:
  tokens:
    - "change-me:admin"       # token:username

log:
  level: info
  format: console             # console or json
`

const sampleTables = `# Dynamic tables for 'custompost provision'.
tables:
  - name: Blog Posts
    category_id: 1
    fields:
      - name: title
        type: string
      - name: content
        type: ckeditor
      - name: featured_image
        type: file
      - name: published_on
        type: date
      - name: is_featured
        type: boolean

  - name: Events
    fields:
      - name: title
        type: string
      - name: description
        type: textarea
      - name: capacity
        type: integer
`

var initDB bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new custompost project",
	Long: `Write a sample custompost.yaml and tables.yaml to the working directory.

With --db, also create the post_categories table in the configured database.

Examples:
  custompost init           # Write sample files
  custompost init --db      # Also create post_categories`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, f := range []struct{ name, content string }{
			{"custompost.yaml", sampleConfig},
			{"tables.yaml", sampleTables},
		} {
			if _, err := os.Stat(f.name); err == nil {
				fmt.Printf("⏭️  %s already exists\n", f.name)
				continue
			}
			if err := os.WriteFile(f.name, []byte(f.content), 0644); err != nil {
				return fmt.Errorf("creating %s: %w", f.name, err)
			}
			fmt.Printf("✅ Created %s\n", f.name)
		}

		if initDB {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()
			if err := categories.NewStore(a.exec).EnsureTable(ctx); err != nil {
				return err
			}
			fmt.Printf("✅ %s table is ready\n", categories.TableName)
		}

		fmt.Println("📝 Edit tables.yaml to declare your content types")
		fmt.Println("🚀 Run 'custompost provision' to create them")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initDB, "db", false, "Create the post_categories table")
}
