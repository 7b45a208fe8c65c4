package cmd

import (
	"fmt"
	"io"
	"os"
)

type CompletionCmd struct {
	Shell string `arg:"" help:"Shell type: bash, zsh, or fish"`
}

func (c *CompletionCmd) Run() error {
	return c.write(os.Stdout)
}

func (c *CompletionCmd) write(w io.Writer) error {
	var script string
	switch c.Shell {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", c.Shell)
	}

	_, err := io.WriteString(w, script)
	return err
}

const bashCompletion = `# bash completion for bambu3mf

_bambu3mf_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main commands
    if [[ ${COMP_CWORD} -eq 1 ]]; then
        opts="convert presets settings inspect extract export-stl version completion"
        COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        return 0
    fi

    case "${prev}" in
        --config)
            COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml)' -- ${cur}) )
            return 0
            ;;
        --log-level)
            COMPREPLY=( $(compgen -W "debug info warn error" -- ${cur}) )
            return 0
            ;;
        --log-file)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
    esac

    # Options for convert command
    if [[ ${COMP_WORDS[1]} == "convert" ]]; then
        case "${prev}" in
            -p|--preset)
                COMPREPLY=( $(compgen -W "default solid fast fine strong" -- ${cur}) )
                return 0
                ;;
            -s|--setting|--name)
                return 0
                ;;
            --base-template)
                COMPREPLY=( $(compgen -f -X '!*.json' -- ${cur}) )
                return 0
                ;;
            *)
                if [[ ${cur} == -* ]]; then
                    opts="-p --preset -s --setting --base-template --name --open -v --verbose --config --log-level --log-file -h --help"
                    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
                else
                    COMPREPLY=( $(compgen -f -X '!*.@(stl|STL|3mf)' -- ${cur}) )
                fi
                return 0
                ;;
        esac
    fi

    # Options for inspect command
    if [[ ${COMP_WORDS[1]} == "inspect" ]]; then
        if [[ ${cur} == -* ]]; then
            opts="--show-settings --show-model-settings -h --help"
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -f -X '!*.3mf' -- ${cur}) )
        fi
        return 0
    fi

    # Options for extract command
    if [[ ${COMP_WORDS[1]} == "extract" ]]; then
        case "${prev}" in
            -o|--output-dir)
                COMPREPLY=( $(compgen -d -- ${cur}) )
                return 0
                ;;
        esac
        if [[ ${cur} == -* ]]; then
            opts="-o --output-dir --binary -h --help"
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -f -X '!*.3mf' -- ${cur}) )
        fi
        return 0
    fi

    # Options for export-stl command
    if [[ ${COMP_WORDS[1]} == "export-stl" ]]; then
        if [[ ${cur} == -* ]]; then
            opts="--binary -h --help"
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -f -X '!*.@(stl|STL)' -- ${cur}) )
        fi
        return 0
    fi

    # Options for completion command
    if [[ ${COMP_WORDS[1]} == "completion" ]]; then
        if [[ ${COMP_CWORD} -eq 2 ]]; then
            opts="bash zsh fish"
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        fi
        return 0
    fi
}

complete -F _bambu3mf_completions bambu3mf
`

const zshCompletion = `#compdef bambu3mf

_bambu3mf() {
    local -a commands
    commands=(
        'convert:Convert an STL file into a Bambu Studio 3MF project'
        'presets:List available presets'
        'settings:List common print settings for --setting'
        'inspect:Inspect a 3MF file and show its contents'
        'extract:Extract the meshes of a 3MF file as STL files'
        'export-stl:Decode an STL file and write the indexed mesh back out'
        'version:Show version information'
        'completion:Generate shell completion script'
    )

    local -a global_opts
    global_opts=(
        '--config[Config file]:config file:_files -g "*.{yaml,yml}"'
        '--log-level[Log level]:level:(debug info warn error)'
        '--log-file[Log file]:log file:_files'
        '(-v --verbose)'{-v,--verbose}'[Show each build step]'
        '(-h --help)'{-h,--help}'[Show help]'
    )

    local -a convert_opts
    convert_opts=(
        '(-p --preset)'{-p,--preset}'[Print preset]:preset:(default solid fast fine strong)'
        '*'{-s,--setting}'[Override setting as key=value]:setting:'
        '--base-template[Bambu Studio settings JSON used as base]:template:_files -g "*.json"'
        '--name[Object name]:name:'
        '--open[Open the result file in the default application]'
        '1:stl file:_files -g "*.{stl,STL}"'
        '2:output file:_files -g "*.3mf"'
    )

    local -a inspect_opts
    inspect_opts=(
        '--show-settings[Print project settings]'
        '--show-model-settings[Print model settings]'
        '1:3mf file:_files -g "*.3mf"'
    )

    local -a extract_opts
    extract_opts=(
        '(-o --output-dir)'{-o,--output-dir}'[Output directory]:directory:_files -/'
        '--binary[Write binary STL]'
        '1:3mf file:_files -g "*.3mf"'
    )

    local -a export_opts
    export_opts=(
        '--binary[Write binary STL]'
        '1:stl file:_files -g "*.{stl,STL}"'
        '2:output file:_files -g "*.{stl,STL}"'
    )

    local -a completion_shells
    completion_shells=(
        'bash:Generate bash completion'
        'zsh:Generate zsh completion'
        'fish:Generate fish completion'
    )

    _arguments -C \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                convert)
                    _arguments $global_opts $convert_opts
                    ;;
                inspect)
                    _arguments $global_opts $inspect_opts
                    ;;
                extract)
                    _arguments $global_opts $extract_opts
                    ;;
                export-stl)
                    _arguments $global_opts $export_opts
                    ;;
                completion)
                    _describe 'shell' completion_shells
                    ;;
                presets|settings|version)
                    _arguments $global_opts
                    ;;
            esac
            ;;
    esac
}

_bambu3mf
`

const fishCompletion = `# fish completion for bambu3mf

# Main commands
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "convert" -d "Convert an STL file into a Bambu Studio 3MF project"
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "presets" -d "List available presets"
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "settings" -d "List common print settings for --setting"
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "inspect" -d "Inspect a 3MF file and show its contents"
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "extract" -d "Extract the meshes of a 3MF file as STL files"
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "export-stl" -d "Decode an STL file and write the indexed mesh back out"
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c bambu3mf -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# global options
complete -c bambu3mf -l config -d "Config file" -r -a "(__fish_complete_suffix .yaml)"
complete -c bambu3mf -f -l log-level -d "Log level" -r -a "debug info warn error"
complete -c bambu3mf -l log-file -d "Log file" -r
complete -c bambu3mf -f -s v -l verbose -d "Show each build step"

# convert command options
complete -c bambu3mf -f -n "__fish_seen_subcommand_from convert" -s p -l preset -d "Print preset" -r -a "default solid fast fine strong"
complete -c bambu3mf -f -n "__fish_seen_subcommand_from convert" -s s -l setting -d "Override setting as key=value" -r
complete -c bambu3mf -n "__fish_seen_subcommand_from convert" -l base-template -d "Settings JSON used as base" -r -a "(__fish_complete_suffix .json)"
complete -c bambu3mf -f -n "__fish_seen_subcommand_from convert" -l name -d "Object name" -r
complete -c bambu3mf -f -n "__fish_seen_subcommand_from convert" -l open -d "Open the result file in the default application"
complete -c bambu3mf -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .stl)" -d "STL file"
complete -c bambu3mf -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .3mf)" -d "3MF file"

# inspect command options
complete -c bambu3mf -f -n "__fish_seen_subcommand_from inspect" -l show-settings -d "Print project settings"
complete -c bambu3mf -f -n "__fish_seen_subcommand_from inspect" -l show-model-settings -d "Print model settings"
complete -c bambu3mf -n "__fish_seen_subcommand_from inspect" -a "(__fish_complete_suffix .3mf)" -d "3MF file"

# extract command options
complete -c bambu3mf -n "__fish_seen_subcommand_from extract" -s o -l output-dir -d "Output directory" -r -a "(__fish_complete_directories)"
complete -c bambu3mf -f -n "__fish_seen_subcommand_from extract" -l binary -d "Write binary STL"
complete -c bambu3mf -n "__fish_seen_subcommand_from extract" -a "(__fish_complete_suffix .3mf)" -d "3MF file"

# export-stl command options
complete -c bambu3mf -f -n "__fish_seen_subcommand_from export-stl" -l binary -d "Write binary STL"
complete -c bambu3mf -n "__fish_seen_subcommand_from export-stl" -a "(__fish_complete_suffix .stl)" -d "STL file"

# completion command options
complete -c bambu3mf -f -n "__fish_seen_subcommand_from completion" -a "bash" -d "Generate bash completion"
complete -c bambu3mf -f -n "__fish_seen_subcommand_from completion" -a "zsh" -d "Generate zsh completion"
complete -c bambu3mf -f -n "__fish_seen_subcommand_from completion" -a "fish" -d "Generate fish completion"
`

func (c *CompletionCmd) Help() string {
	return `
Generate shell completion scripts for bambu3mf.

Examples:
  # Bash
  bambu3mf completion bash > ~/.local/share/bash-completion/completions/bambu3mf

  # Zsh
  bambu3mf completion zsh > ~/.zsh/completion/_bambu3mf
  # or add to .zshrc:
  autoload -U compinit && compinit

  # Fish
  bambu3mf completion fish > ~/.config/fish/completions/bambu3mf.fish
`
}
