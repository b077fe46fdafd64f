package utils

const DefaultBufferSize = 1024 * 256 // 256KB transfer chunk

const ToolUserAgent = "psa-update"
