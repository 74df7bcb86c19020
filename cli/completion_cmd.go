package main

import (
	"fmt"
	"os"
)

func runCompletion(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix completion <bash|zsh|fish|powershell>")
		return 2
	}

	shell := args[0]
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	case "powershell":
		fmt.Print(powershellCompletion)
	default:
		fmt.Fprintf(os.Stderr, "unsupported shell: %s\n", shell)
		fmt.Fprintln(os.Stderr, "Supported shells: bash, zsh, fish, powershell")
		return 2
	}

	return 0
}

const bashCompletion = `# ctrlmatrix bash completion
_ctrlmatrix_completions() {
    local cur prev commands
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    commands="validate generate extract coverage badge watch show explain serve completion version"

    case "${prev}" in
        ctrlmatrix)
            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "text json sarif all" -- "${cur}") )
            return 0
            ;;
        --framework)
            COMPREPLY=( $(compgen -W "ISO27001 SOC2 NISTCSF" -- "${cur}") )
            return 0
            ;;
        --level)
            COMPREPLY=( $(compgen -W "error warning" -- "${cur}") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "--prr --matrix --output --sarif-output --format --framework --json --overwrite --config --quiet --verbose --version --debounce" -- "${cur}") )
        return 0
    fi

    COMPREPLY=( $(compgen -f -- "${cur}") )
}
complete -F _ctrlmatrix_completions ctrlmatrix
`

const zshCompletion = `#compdef ctrlmatrix
# ctrlmatrix zsh completion

_ctrlmatrix() {
    local -a commands
    commands=(
        'validate:Validate control matrices against a PRR document'
        'generate:Generate a control matrix from a PRR document'
        'extract:List the requirement IDs of a PRR document'
        'coverage:Score compliance framework coverage of a matrix'
        'badge:Write an SVG coverage badge'
        'watch:Re-validate when the inputs change'
        'show:Browse validation issues interactively'
        'explain:Explain validation issues using an LLM'
        'serve:Start MCP server on stdio'
        'completion:Generate shell completions'
        'version:Print version and exit'
    )

    _arguments -C \
        '--config[Config file]:file:_files' \
        '(-q --quiet)'{-q,--quiet}'[Suppress output]' \
        '(-v --verbose)'{-v,--verbose}'[Verbose output]' \
        '--version[Print version]' \
        '1:command:->cmds' \
        '*::arg:->args'

    case "$state" in
        cmds)
            _describe 'command' commands
            ;;
        args)
            case "${words[1]}" in
                completion)
                    _values 'shell' bash zsh fish powershell
                    ;;
                *)
                    _arguments \
                        '--prr[PRR document]:file:_files -g "*.md"' \
                        '--matrix[Control matrix]:file:_files -g "*.csv"' \
                        '--output[Output file]:file:_files' \
                        '--format[Output format]:format:(text json sarif all)' \
                        '--framework[Framework]:framework:(ISO27001 SOC2 NISTCSF)'
                    ;;
            esac
            ;;
    esac
}

_ctrlmatrix "$@"
`

const fishCompletion = `# ctrlmatrix fish completion
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'validate' -d 'Validate control matrices against a PRR document'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'generate' -d 'Generate a control matrix from a PRR document'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'extract' -d 'List the requirement IDs of a PRR document'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'coverage' -d 'Score compliance framework coverage of a matrix'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'badge' -d 'Write an SVG coverage badge'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'watch' -d 'Re-validate when the inputs change'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'show' -d 'Browse validation issues interactively'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'explain' -d 'Explain validation issues using an LLM'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'serve' -d 'Start MCP server on stdio'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'completion' -d 'Generate shell completions'
complete -c ctrlmatrix -n '__fish_use_subcommand' -a 'version' -d 'Print version and exit'
complete -c ctrlmatrix -l prr -d 'PRR document' -rF
complete -c ctrlmatrix -l matrix -d 'Control matrix CSV' -rF
complete -c ctrlmatrix -l output -d 'Output file' -rF
complete -c ctrlmatrix -l format -d 'Output format' -a 'text json sarif all'
complete -c ctrlmatrix -l framework -d 'Compliance framework' -a 'ISO27001 SOC2 NISTCSF'
complete -c ctrlmatrix -l config -d 'Config file' -rF
complete -c ctrlmatrix -s q -l quiet -d 'Suppress output'
complete -c ctrlmatrix -s v -l verbose -d 'Verbose output'
complete -c ctrlmatrix -l version -d 'Print version'
complete -c ctrlmatrix -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'
`

const powershellCompletion = `# ctrlmatrix PowerShell completion
Register-ArgumentCompleter -CommandName ctrlmatrix -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $commands = @('validate', 'generate', 'extract', 'coverage', 'badge', 'watch', 'show', 'explain', 'serve', 'completion', 'version')

    $commands | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`
