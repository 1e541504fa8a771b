package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
)

// seedDocuments is the minimal corpus written into an empty knowledge base.
var seedDocuments = []struct {
	path    string
	content string
}{
	{
		path: "selectors/login.md",
		content: `---
title: Login page selectors
page: login
---
# Login page selectors

- Username field: page.getByTestId('login-username')
- Password field: page.getByTestId('login-password')
- Submit button: page.getByRole('button', { name: 'Sign in' })
- Error banner: page.getByRole('alert')
- Remember me: page.getByLabel('Remember me')
`,
	},
	{
		path: "workflows/authentication.md",
		content: `---
title: Authentication workflow
tags: login, session
---
# Authentication workflow

1. Navigate to the base URL and wait for the network to be idle.
2. Fill the username and password from process.env.TEST_USERNAME and process.env.TEST_PASSWORD.
3. Click the sign-in button.
4. Expect the dashboard heading to be visible.

` + "```ts" + `
await page.goto(process.env.BASE_URL!);
await page.waitForLoadState('networkidle');
await page.getByTestId('login-username').fill(process.env.TEST_USERNAME!);
await page.getByTestId('login-password').fill(process.env.TEST_PASSWORD!);
await page.getByRole('button', { name: 'Sign in' }).click();
await expect(page.getByRole('heading', { name: 'Dashboard' })).toBeVisible();
` + "```" + `
`,
	},
	{
		path: "patterns/waiting.md",
		content: `---
title: Waiting strategies
---
# Waiting strategies

- Prefer web-first assertions: await expect(locator).toBeVisible().
- After navigation call page.waitForLoadState('networkidle').
- Never use page.waitForTimeout; fixed delays make tests slow and flaky.
- Avoid page.waitForSelector when an assertion expresses the same intent.
`,
	},
}

// SeedCount is the number of documents Seed writes.
var SeedCount = len(seedDocuments)

// Seed writes the canonical seed documents under root. Existing files are
// left untouched.
func Seed(root string) error {
	for _, d := range seedDocuments {
		path := filepath.Join(root, filepath.FromSlash(d.path))
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(d.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", d.path, err)
		}
	}
	return nil
}
