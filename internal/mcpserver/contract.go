package mcpserver

// SpeedsFormatContract describes the speeds text format that LLM consumers
// should follow when integrating speed triggers.
const SpeedsFormatContract = `# Speeds Format

A speeds file lists speed triggers for one chart difficulty, one per line.

## Line format

` + "```" + `
<time> <speed multiplier> [interpolate]
` + "```" + `

1. **time** is a decimal number (seconds or beats, as the game reads it).
2. **speed multiplier** is a decimal number; 1 is normal track speed.
3. **interpolate** is optional and must be exactly ` + "`" + `true` + "`" + ` or ` + "`" + `false` + "`" + `.
   When omitted it is ` + "`" + `false` + "`" + `. When true the speed eases into the next trigger.
4. Values are separated by any amount of spaces or tabs.
5. Blank lines and lines starting with ` + "`" + `#` + "`" + ` are ignored.
6. Errors report the zero-based line index counted over every line, including
   skipped ones.

## Difficulties

| Name | Menu | Stored under |
|------|------|--------------|
| easy | 1 | SpeedHelper_SpeedTriggers_EASY |
| normal | 2 | SpeedHelper_SpeedTriggers_NORMAL |
| hard | 3 | SpeedHelper_SpeedTriggers_HARD |
| expert | 4 | SpeedHelper_SpeedTriggers_EXPERT |
| xd | 5 | SpeedHelper_SpeedTriggers_XD |
| remixd | 6 | SpeedHelper_SpeedTriggers_REMIXD |
| all | 7 | SpeedHelper_SpeedTriggers |

## Example

` + "```" + `
# intro at normal speed
0 1
12.5 1.5 true
16 2
` + "```" + `
`
