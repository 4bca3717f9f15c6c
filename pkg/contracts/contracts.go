// Package contracts holds recorded upstream responses in the exact shape
// GitHub and LeetCode return them. Client and CLI tests serve these bodies
// from fake upstreams so a drift in either API shows up in one place.
package contracts

// GitHubCalendarContract is a GraphQL contributionsCollection response.
const GitHubCalendarContract = `{
  "data": {
    "user": {
      "contributionsCollection": {
        "contributionCalendar": {
          "totalContributions": 7,
          "weeks": [
            {
              "contributionDays": [
                {"date": "2024-05-05", "contributionCount": 0, "color": "#ebedf0"},
                {"date": "2024-05-06", "contributionCount": 3, "color": "#40c463"}
              ]
            },
            {
              "contributionDays": [
                {"date": "2024-05-12", "contributionCount": 4, "color": "#30a14e"}
              ]
            }
          ]
        }
      }
    }
  }
}`

// GitHubUserNotFoundContract is GitHub's GraphQL answer for an unknown login.
const GitHubUserNotFoundContract = `{
  "data": {"user": null},
  "errors": [
    {
      "type": "NOT_FOUND",
      "path": ["user"],
      "locations": [{"line": 2, "column": 3}],
      "message": "Could not resolve to a User with the login of 'ghost-user'."
    }
  ]
}`

// GitHubEventsContract is a /users/{user}/events/public page with one push,
// one watch and one older push.
const GitHubEventsContract = `[
  {
    "id": "40000000002",
    "type": "PushEvent",
    "actor": {"id": 583231, "login": "octocat"},
    "repo": {"id": 1296269, "name": "octocat/Hello-World", "url": "https://api.github.com/repos/octocat/Hello-World"},
    "payload": {
      "push_id": 18000000002,
      "size": 2,
      "ref": "refs/heads/main",
      "commits": [
        {
          "sha": "aaa111",
          "author": {"email": "octocat@github.com", "name": "The Octocat"},
          "message": "Add README",
          "distinct": true,
          "url": "https://api.github.com/repos/octocat/Hello-World/commits/aaa111"
        },
        {
          "sha": "bbb222",
          "author": {"email": "octocat@github.com", "name": "The Octocat"},
          "message": "Fix typo in README",
          "distinct": true,
          "url": "https://api.github.com/repos/octocat/Hello-World/commits/bbb222"
        }
      ]
    },
    "public": true,
    "created_at": "2024-05-12T10:00:00Z"
  },
  {
    "id": "40000000001",
    "type": "WatchEvent",
    "actor": {"id": 583231, "login": "octocat"},
    "repo": {"id": 1, "name": "golang/go", "url": "https://api.github.com/repos/golang/go"},
    "payload": {"action": "started"},
    "public": true,
    "created_at": "2024-05-11T09:00:00Z"
  },
  {
    "id": "40000000000",
    "type": "PushEvent",
    "actor": {"id": 583231, "login": "octocat"},
    "repo": {"id": 1300192, "name": "octocat/Spoon-Knife", "url": "https://api.github.com/repos/octocat/Spoon-Knife"},
    "payload": {
      "push_id": 18000000000,
      "size": 1,
      "ref": "refs/heads/main",
      "commits": [
        {
          "sha": "ccc333",
          "author": {"email": "octocat@github.com", "name": "The Octocat"},
          "message": "Initial commit",
          "distinct": true,
          "url": "https://api.github.com/repos/octocat/Spoon-Knife/commits/ccc333"
        }
      ]
    },
    "public": true,
    "created_at": "2024-05-10T08:00:00Z"
  }
]`

// LeetCodeCalendarContract is a getUserProfileCalendar response. The
// calendar itself is a JSON document encoded as a string.
const LeetCodeCalendarContract = `{
  "data": {
    "matchedUser": {
      "username": "alice",
      "submissionCalendar": "{\"1700000000\": 3, \"1700086400\": 1}"
    }
  }
}`

// LeetCodeUserNotFoundContract is LeetCode's answer for an unknown username.
const LeetCodeUserNotFoundContract = `{
  "data": {"matchedUser": null},
  "errors": [
    {
      "message": "That user does not exist.",
      "locations": [{"line": 2, "column": 3}],
      "path": ["matchedUser"],
      "extensions": {"handled": true}
    }
  ]
}`
