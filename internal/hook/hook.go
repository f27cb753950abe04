// Package hook generates the shell snippets that report command completions
// to a running failbell. Reporting is backgrounded with output discarded so a
// hook can never slow down or break the shell.
package hook

import "fmt"

// Shells lists the supported shells in display order.
var Shells = []string{"zsh", "bash", "fish"}

// Snippet returns a sourceable snippet for the given shell.
func Snippet(shell string) (string, error) {
	switch shell {
	case "zsh":
		return zshSnippet, nil
	case "bash":
		return bashSnippet, nil
	case "fish":
		return fishSnippet, nil
	}
	return "", fmt.Errorf("unsupported shell %q (supported: zsh, bash, fish)", shell)
}

const zshSnippet = `# failbell: chime on failed commands. Add to ~/.zshrc:
#   eval "$(failbell hook zsh)"
autoload -Uz add-zsh-hook

_failbell_preexec() {
  _failbell_cmd=$1
}

_failbell_precmd() {
  local code=$?
  [[ -n $_failbell_cmd ]] || return 0
  command failbell send -exit $code -command "$_failbell_cmd" -dir "$PWD" >/dev/null 2>&1 &!
  unset _failbell_cmd
}

add-zsh-hook preexec _failbell_preexec
add-zsh-hook precmd _failbell_precmd
`

const bashSnippet = `# failbell: chime on failed commands. Add to ~/.bashrc:
#   eval "$(failbell hook bash)"
_failbell_prompt() {
  local code=$?
  [[ -n $_failbell_cmd ]] || return 0
  (command failbell send -exit $code -command "$_failbell_cmd" -dir "$PWD" >/dev/null 2>&1 &)
  unset _failbell_cmd
}

trap '[[ $BASH_COMMAND == _failbell_prompt ]] || _failbell_cmd=$BASH_COMMAND' DEBUG
PROMPT_COMMAND="_failbell_prompt${PROMPT_COMMAND:+;$PROMPT_COMMAND}"
`

const fishSnippet = `# failbell: chime on failed commands. Add to ~/.config/fish/config.fish:
#   failbell hook fish | source
function _failbell_postexec --on-event fish_postexec
    set -l code $status
    command failbell send -exit $code -command "$argv[1]" -dir "$PWD" >/dev/null 2>&1 &
    disown 2>/dev/null
end
`
