// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	ReleaseTagNotFoundId Id = iota + 1
	NoMatchingAssetId
	MalformedResponseId
	TransportFailureId
	RateLimitedId
	AuthenticationFailedId
	ConfigLoadFailedId
	InvalidTargetId
)

type (
	// Id identifies an entry of the issue catalog.
	Id int

	// MarkdownMsg is the guidance text of an issue.
	MarkdownMsg string

	// HttpLink is a documentation link shown below the guidance text.
	HttpLink string

	// Issue is a catalog entry: Markdown guidance for one class of failure.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // extbin documentation
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guidance and its links with the given glamour style
// ("dark", "light", "notty", or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	releaseTagNotFoundIssue = &Issue{
		id: ReleaseTagNotFoundId,
		mdMsg: `
# Release not found!

The repository has no GitHub release for the requested version tag.

## Things you can try:
- Check that the version matches the release tag exactly (e.g. ` + "`1.2.3`" + ` vs ` + "`v1.2.3`" + `)
- Check that the maintainers publish GitHub releases for this extension
- Build the extension from source instead`,
		extLinks: []HttpLink{"https://docs.github.com/en/rest/releases/releases#get-a-release-by-tag-name"},
	}

	noMatchingAssetIssue = &Issue{
		id: NoMatchingAssetId,
		mdMsg: `
# No prebuilt binary for your platform!

The release exists, but none of its assets is named for your PHP version,
thread safety mode, compiler and architecture.

## Expected asset names look like:
~~~
php_{extension}-{version}-{php}-{ts|nts}-{compiler}-{arch}.zip
php_{extension}-{version}-{php}-{compiler}-{ts|nts}-{arch}.zip
~~~

## Things you can try:
- List the names that were searched for:
~~~
$ extbin names <org/repo> <version> --ext <name>
~~~
- Check the target flags (--php, --ts/--nts, --compiler, --arch)
- Ask the maintainers to publish a build for your platform
- Build the extension from source instead`,
	}

	malformedResponseIssue = &Issue{
		id: MalformedResponseId,
		mdMsg: `
# Unexpected response from the GitHub API!

The release data did not have the expected shape. This usually means the
request did not reach a GitHub REST API.

## Things you can try:
- Check ` + "`github.api_base_url`" + ` in your configuration (GitHub Enterprise uses ` + "`https://HOST/api/v3`" + `)
- Check for a proxy or captive portal rewriting responses
- Re-run with --verbose to see the request URL`,
	}

	transportFailureIssue = &Issue{
		id: TransportFailureId,
		mdMsg: `
# Could not reach the GitHub API!

The request failed before a usable response was received.

## Things you can try:
- Check your network connection and proxy settings
- Retry in a moment; GitHub may be having an incident
- Increase ` + "`http.timeout`" + ` or ` + "`http.retries`" + ` in your configuration
- Re-run with --verbose to see each attempt`,
		extLinks: []HttpLink{"https://www.githubstatus.com"},
	}

	rateLimitedIssue = &Issue{
		id: RateLimitedId,
		mdMsg: `
# GitHub API rate limit exceeded!

Unauthenticated requests are limited to 60 per hour.

## Things you can try:
- Set a token to raise the limit to 5000 requests per hour:
~~~
$ export GITHUB_TOKEN=ghp_...
~~~
- Or wait until the limit resets`,
		extLinks: []HttpLink{"https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api"},
	}

	authenticationFailedIssue = &Issue{
		id: AuthenticationFailedId,
		mdMsg: `
# GitHub rejected the credentials!

The API answered 401 or 403 for the release lookup.

## Things you can try:
- Check that GITHUB_TOKEN, GH_TOKEN or ` + "`github.token`" + ` holds a valid, unexpired token
- For private repositories, check that the token can read the repository
- Unset the token to retry anonymously for public repositories`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or is invalid.

## Things you can try:
- Show where the configuration file is expected:
~~~
$ extbin config path
~~~
- Recreate a default configuration:
~~~
$ extbin config init
~~~
- Check EXTBIN_* environment variables for invalid values`,
	}

	invalidTargetIssue = &Issue{
		id: InvalidTargetId,
		mdMsg: `
# Invalid target platform!

The PHP runtime to find a binary for is incomplete or invalid.

## Valid values:
- --php: major.minor, e.g. ` + "`8.3`" + `
- --ts / --nts: thread safety
- --compiler: ` + "`vc14`, `vc15`, `vs16`, `vs17`" + `
- --arch: ` + "`x86_64`, `x86`, `arm64`" + `

## Things you can try:
- Pass the missing flags, or set defaults in the ` + "`target`" + ` section of your configuration
- Describe the target in a CUE file and pass it with --target-file`,
	}

	issues = map[Id]*Issue{
		releaseTagNotFoundIssue.Id():   releaseTagNotFoundIssue,
		noMatchingAssetIssue.Id():      noMatchingAssetIssue,
		malformedResponseIssue.Id():    malformedResponseIssue,
		transportFailureIssue.Id():     transportFailureIssue,
		rateLimitedIssue.Id():          rateLimitedIssue,
		authenticationFailedIssue.Id(): authenticationFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidTargetIssue.Id():        invalidTargetIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
