package urls

// BuildingFirmware is the ArduPilot guide to building firmware from source,
// needed when a board's firmware lacks embedded defaults support.
const BuildingFirmware = "https://ardupilot.org/dev/docs/building-the-code.html"

// ApjTool is the upstream script whose command line the root command
// accepts.
const ApjTool = "https://github.com/ArduPilot/ardupilot/blob/master/Tools/scripts/apj_tool.py"
